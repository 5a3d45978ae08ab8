package conversation

// Lines shown by the REPL. Format verbs are noted where used.
const (
	LineWelcome      = "vocabecho: say the word you see. Type /help for commands."
	LineNoWords      = "No words loaded. Use /load, /paste, /vocab or /article."
	LineTryAgain     = "Heard %q, try again."
	LineMatched      = "✓ %s"
	LinePassed       = "→ %s"
	LineFinished     = "Done! %d/%d matched, %d passed."
	LineRecognizer   = "Recognizer error: %v. Type /restart to try again."
	LineLoaded       = "Loaded %d words from %s. Type /start to begin."
	LineNoMeaning    = "No meaning for %q yet. Use /define <text>."
	LineMeaningSaved = "Meaning saved."
	LineNoSession    = "No word to practise. Type /start."
	LineLanguage     = "Language: %s (%s)."
	LineUnknownLang  = "Unknown language %q."
	LineTokenSaved   = "Token saved."
	LineNoToken      = "No API token. Use /token <value> or set FRDIC_TOKEN."
	LineUnknown      = "Unknown command %q. Type /help."
	LinePastePrompt  = "Paste rows (word<TAB>phonetic<TAB>meaning, or words separated by commas), then an empty line."
	LineBye          = "Bye."
	LineSpeechOff    = "Speech output is off; set AZURE_SPEECH_KEY and AZURE_SPEECH_REGION."
	LineAsking       = "Asking for a meaning..."
	LineAIError      = "Could not get a meaning: %v"
	LineDefineUsage  = "Usage: /define <meaning>"
	LineStatus       = "%s  %d/%d  %s  matched %d  passed %d"
	LineFiles        = "Files in %s: %s"
	LineNoLists      = "No study lists for this language."
	LineVocabUsage   = "Usage: /vocab <list id>. Type /lists to see ids."
	LineArticleUsage = "Usage: /article <url>"
	LineFetching     = "Fetching article..."
	LineTokenSet     = "An API token is set."
	LineNoRuns       = "No runs yet."
)

// HelpText lists the REPL commands.
const HelpText = `Type an answer to practise the current word, or a command:
  /start            start from the first word
  /pass             skip the current word
  /say              pronounce the current word
  /meaning          show the meaning (asks the AI when missing)
  /define <text>    set the meaning of the current word
  /restart          listen again after an error
  /stop             stop listening
  /status           show progress
  /lang [code]      show or switch the practice language
  /load <file>      load a CSV file
  /files            list CSV files in the vocabulary folder
  /paste            paste rows to practise
  /lists            show your FrDic study lists
  /vocab <id>       practise a FrDic study list
  /article <url>    practise words from a Japanese article
  /token <value>    save the FrDic API token
  /history          show recent runs
  /quit             exit`
