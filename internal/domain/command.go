package domain

import "time"

// CommandTarget distinguishes who a user mention addresses.
type CommandTarget string

const (
	TargetBot   CommandTarget = "bot"
	TargetMacro CommandTarget = "macro"
)

// MacroAction is a recognized macro control verb. The chat strings are the
// Korean verbs the operator types at the macro.
type MacroAction string

const (
	MacroPause  MacroAction = "pause"
	MacroResume MacroAction = "resume"
	MacroExit   MacroAction = "exit"
	// MacroNone marks a macro mention whose verb was not recognized.
	MacroNone MacroAction = ""
)

// UserCommand is a parsed "@target rest" mention from the human operator.
// BOT commands keep the rest opaque; MACRO commands carry a control action.
type UserCommand struct {
	Target      CommandTarget `json:"target"`
	Raw         string        `json:"raw"`
	BotCommand  string        `json:"bot_command,omitempty"`
	MacroAction MacroAction   `json:"macro_action,omitempty"`
	Timestamp   time.Time     `json:"ts"`
}
