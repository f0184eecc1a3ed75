package blueprint

// Default package lists for a Raspberry Pi camera rig. These reproduce the
// hand-written setup sequences the blueprint format replaced, so running the
// CLI without a blueprint file still provisions a working host.
var (
	// DefaultPackages is the base GStreamer/build tool set every rig needs.
	DefaultPackages = []string{
		"rsync",
		"ffmpeg",
		"x11-utils",
		"git",
		"cmake",
		"pkg-config",
		"gcc-12",
		"g++-12",
		"python3-dev",
		"python3-pip",
		"python3-setuptools",
		"python3-virtualenv",
		"python-gi-dev",
		"libgirepository1.0-dev",
		"libzmq3-dev",
		"libgtk-3-dev",
		"gstreamer1.0-tools",
		"gstreamer1.0-plugins-base",
		"gstreamer1.0-plugins-good",
		"gstreamer1.0-plugins-bad",
		"gstreamer1.0-libav",
		"libgstreamer1.0-dev",
		"libgstreamer-plugins-base1.0-dev",
	}

	// DefaultCameraPackages adds OpenCV and the libcamera stack for rigs that
	// run the detection pipeline locally.
	DefaultCameraPackages = []string{
		"libopencv-dev",
		"python3-opencv",
		"libcamera-dev",
		"libcamera-apps",
		"python3-libcamera",
		"python3-picamera2",
		"v4l-utils",
	}

	// DefaultBuildTools are installed into the venv before the requirements
	// manifest, so source distributions in it can build.
	DefaultBuildTools = []string{"setuptools", "wheel"}

	// DefaultInstallerArgs skip the HailoRT build (the hailo-all meta-package
	// already provides it) and target the Raspberry Pi platform.
	DefaultInstallerArgs = []string{"--skip-hailort", "--target-platform", "rpi"}
)

const (
	DefaultMetaPackage = "hailo-all"
	DefaultSDKRepo     = "https://github.com/hailo-ai/tappas_gcc12.git"

	// DefaultSDKDestination places the clone next to the working directory,
	// not inside it, matching where the SDK's own tooling expects to live.
	DefaultSDKDestination = "../tappas_gcc12"
	DefaultSDKInstaller   = "./install.sh"

	DefaultVenv         = "venv"
	DefaultRequirements = "requirements.txt"
)

// Default returns the built-in blueprint for the given profile.
func Default(profile Profile) *Blueprint {
	return &Blueprint{
		APIVersion: "v1",
		Kind:       "Blueprint",
		Metadata: Metadata{
			Name:        "camera-rig",
			Description: "Raspberry Pi camera/AI host with Hailo acceleration",
		},
		Spec: Spec{
			Profile: profile,
			System: System{
				MetaPackage:    DefaultMetaPackage,
				Packages:       DefaultPackages,
				CameraPackages: DefaultCameraPackages,
				FullUpgrade:    profile == ProfileCamera,
			},
			Python: Python{
				Venv:               DefaultVenv,
				Requirements:       DefaultRequirements,
				BuildTools:         DefaultBuildTools,
				SystemSitePackages: true,
			},
			SDK: SDK{
				Repo:          DefaultSDKRepo,
				Destination:   DefaultSDKDestination,
				Installer:     DefaultSDKInstaller,
				InstallerArgs: DefaultInstallerArgs,
			},
		},
	}
}
