package blueprint

// Blueprint is the root object that holds the entire configuration for a rigstrap run.
// It's populated by parsing the user's rigstrap.yaml file, or by Default() when the
// CLI is invoked without a blueprint.
type Blueprint struct {
	APIVersion string   `yaml:"apiVersion" validate:"required"`
	Kind       string   `yaml:"kind" validate:"required,eq=Blueprint"`
	Metadata   Metadata `yaml:"metadata" validate:"required"`
	Spec       Spec     `yaml:"spec" validate:"required"`
}

// Metadata contains rig-level metadata.
type Metadata struct {
	Name        string            `yaml:"name" validate:"required"`
	Description string            `yaml:"description"`
	Labels      map[string]string `yaml:"labels,omitempty"`
}

// Spec contains the detailed specification of the provisioning sequence.
type Spec struct {
	Profile Profile `yaml:"profile" validate:"required,oneof=base camera"`
	System  System  `yaml:"system" validate:"required"`
	Python  Python  `yaml:"python"`
	SDK     SDK     `yaml:"sdk" validate:"required"`
}

// Profile selects which provisioning sequence runs. The camera profile is a
// strict superset of base: it adds the system upgrade, the OpenCV/camera
// packages, and the Python virtual environment stage.
type Profile string

const (
	ProfileBase   Profile = "base"
	ProfileCamera Profile = "camera"
)

// System configures the OS package stage.
type System struct {
	// MetaPackage pulls in the full accelerator driver stack (e.g. hailo-all).
	// It must be installed before the SDK installer runs.
	MetaPackage    string   `yaml:"metaPackage" validate:"required"`
	Packages       []string `yaml:"packages" validate:"required,min=1"`
	CameraPackages []string `yaml:"cameraPackages"`
	FullUpgrade    bool     `yaml:"fullUpgrade"`
}

// Python configures the virtual environment stage (camera profile only).
type Python struct {
	Venv               string   `yaml:"venv"`
	Requirements       string   `yaml:"requirements"`
	BuildTools         []string `yaml:"buildTools"`
	SystemSitePackages bool     `yaml:"systemSitePackages"`
}

// SDK configures the accelerator SDK stage: where to clone the tappas
// repository and how to invoke its installer.
type SDK struct {
	Repo          string   `yaml:"repo" validate:"required,url"`
	Branch        string   `yaml:"branch"`
	Destination   string   `yaml:"destination" validate:"required"`
	Installer     string   `yaml:"installer" validate:"required"`
	InstallerArgs []string `yaml:"installerArgs"`
}

// HasPython reports whether the blueprint runs the Python stage.
func (s *Spec) HasPython() bool {
	return s.Profile == ProfileCamera
}
