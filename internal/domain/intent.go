package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentAnswer             // typed attempt at the current word
	IntentStart
	IntentPass
	IntentSay
	IntentMeaning
	IntentDefine // set the meaning of the current word
	IntentRestart
	IntentStop
	IntentStatus
	IntentLanguage
	IntentLoadFile
	IntentFiles
	IntentPaste
	IntentLists
	IntentVocab
	IntentArticle
	IntentToken
	IntentHistory
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentAnswer:
		return "answer"
	case IntentStart:
		return "start"
	case IntentPass:
		return "pass"
	case IntentSay:
		return "say"
	case IntentMeaning:
		return "meaning"
	case IntentDefine:
		return "define"
	case IntentRestart:
		return "restart"
	case IntentStop:
		return "stop"
	case IntentStatus:
		return "status"
	case IntentLanguage:
		return "lang"
	case IntentLoadFile:
		return "load"
	case IntentFiles:
		return "files"
	case IntentPaste:
		return "paste"
	case IntentLists:
		return "lists"
	case IntentVocab:
		return "vocab"
	case IntentArticle:
		return "article"
	case IntentToken:
		return "token"
	case IntentHistory:
		return "history"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string // optional argument, e.g. file path or language code
}

var intentNames = map[string]IntentType{
	"answer":  IntentAnswer,
	"start":   IntentStart,
	"pass":    IntentPass,
	"say":     IntentSay,
	"meaning": IntentMeaning,
	"define":  IntentDefine,
	"restart": IntentRestart,
	"stop":    IntentStop,
	"status":  IntentStatus,
	"lang":    IntentLanguage,
	"load":    IntentLoadFile,
	"files":   IntentFiles,
	"paste":   IntentPaste,
	"lists":   IntentLists,
	"vocab":   IntentVocab,
	"article": IntentArticle,
	"token":   IntentToken,
	"history": IntentHistory,
	"help":    IntentHelp,
	"quit":    IntentQuit,
	"unknown": IntentUnknown,
}

// IntentFromString converts an intent name to an IntentType.
// Returns IntentUnknown for unrecognized names.
func IntentFromString(name string) IntentType {
	if t, ok := intentNames[name]; ok {
		return t
	}
	return IntentUnknown
}
