package docker

// Labels put on every object created by stasis-storage.
const (
	LabelManaged = "stasis.managed"
	LabelStorage = "stasis.storage"
	LabelType    = "stasis.type"
)

// ContainerSpec describes a container to create.
type ContainerSpec struct {
	Name    string
	Image   string
	Cmd     []string
	Env     []string // KEY=value
	Labels  map[string]string
	Binds   []string // volume:/path[:ro]
	Ports   []string // exposed container ports, e.g. "9000/tcp"
	Publish []string // host bindings, e.g. "80:80"
	Network string   // network to join, optional
	Aliases []string // network aliases
}

// Container is a container known to the daemon.
type Container struct {
	ID     string
	Name   string
	Image  string
	State  string // created, running, exited, ...
	Labels map[string]string
}

// ContainerState is the runtime state of a container.
type ContainerState struct {
	Running bool
	Status  string
	IP      string // address on the first attached network, empty when stopped
}
