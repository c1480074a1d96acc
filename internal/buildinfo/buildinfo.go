package buildinfo

const Graffiti = " _______      __\n|  ___\\ \\    / /\n| |_   \\ \\  / / \n|  _|   \\ \\/ /  \n| |      \\  /   \n|_|       \\/    \n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "FVEVAL"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
