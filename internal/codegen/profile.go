package codegen

// Profile holds the environment-call numbers of one target simulator.
// Venus and RARS agree on everything except exit-with-code.
type Profile struct {
	Name        string
	PrintInt    int
	PrintString int
	ReadInt     int
	Exit        int
	ExitCode    int
	PrintChar   int
}

var (
	Venus = Profile{
		Name:        "venus",
		PrintInt:    1,
		PrintString: 4,
		ReadInt:     5,
		Exit:        10,
		ExitCode:    17,
		PrintChar:   11,
	}

	RARS = Profile{
		Name:        "rars",
		PrintInt:    1,
		PrintString: 4,
		ReadInt:     5,
		Exit:        10,
		ExitCode:    93,
		PrintChar:   11,
	}
)
