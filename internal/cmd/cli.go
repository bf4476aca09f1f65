package cmd

// LogConfig is the shared logging flag group.
type LogConfig struct {
	Level string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"VULKANGEN_LOG_LEVEL"`
	File  string `help:"Write logs to a file instead of the console" env:"VULKANGEN_LOG_FILE"`
}

// CLI is the root command structure parsed by kong.
type CLI struct {
	Log    LogConfig     `embed:"" prefix:"log."`
	Config string        `help:"Path to a configuration file" env:"VULKANGEN_CONFIG"`
	CfgCmd ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`

	Generate Generate `cmd:"" help:"Generate the framework sources from the Vulkan headers"`
	Dump     Dump     `cmd:"" help:"Parse the headers and print the semantic model as JSON"`
}
