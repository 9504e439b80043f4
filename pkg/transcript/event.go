package transcript

import "encoding/json"

// EventKind is the tagged union of everything a transcript event can carry.
// New concrete kinds must be added before falling through to Unknown so that
// a reader built against an older version of this package never crashes
// deserializing a transcript produced by a newer daemon — it just sees an
// UnknownKind event and skips it.
type EventKind interface {
	kindType() string
}

type MessageKind struct{ Text string }

func (MessageKind) kindType() string { return "message" }

// FinalAnswerKind is the authoritative discriminator for Anna's response —
// render this, never a MessageKind, as "the" answer.
type FinalAnswerKind struct{ Text string }

func (FinalAnswerKind) kindType() string { return "final_answer" }

type StageStartKind struct{ Stage string }

func (StageStartKind) kindType() string { return "stage_start" }

type StageEndKind struct {
	Stage   string
	Outcome StageOutcome
}

func (StageEndKind) kindType() string { return "stage_end" }

type ProbeStartKind struct {
	ProbeID string
	Command string
}

func (ProbeStartKind) kindType() string { return "probe_start" }

type ProbeEndKind struct {
	ProbeID       string
	ExitCode      int
	TimingMS      int64
	StdoutPreview string // empty means no preview captured
}

func (ProbeEndKind) kindType() string { return "probe_end" }

// NoteKind is a debug-only metadata note.
type NoteKind struct{ Text string }

func (NoteKind) kindType() string { return "note" }

// UnknownKind is the forward-compatibility sentinel: any "type" value this
// version of the package doesn't recognize decodes to this instead of
// failing the whole transcript unmarshal.
type UnknownKind struct{ RawType string }

func (UnknownKind) kindType() string { return "unknown" }

// Event is a single transcript entry.
type Event struct {
	ElapsedMS int64
	From      Actor
	To        *Actor // nil for broadcasts
	Kind      EventKind
}

// Message builds a general-conversation event between two actors.
func Message(elapsedMS int64, from, to Actor, text string) Event {
	return Event{ElapsedMS: elapsedMS, From: from, To: &to, Kind: MessageKind{Text: text}}
}

// FinalAnswer builds Anna's authoritative response event.
func FinalAnswer(elapsedMS int64, text string) Event {
	to := ActorYou
	return Event{ElapsedMS: elapsedMS, From: ActorAnna, To: &to, Kind: FinalAnswerKind{Text: text}}
}

// StageStart builds a pipeline-stage-starting event.
func StageStart(elapsedMS int64, stage string) Event {
	return Event{ElapsedMS: elapsedMS, From: ActorSystem, Kind: StageStartKind{Stage: stage}}
}

// StageEnd builds a pipeline-stage-ending event.
func StageEnd(elapsedMS int64, stage string, outcome StageOutcome) Event {
	return Event{ElapsedMS: elapsedMS, From: ActorSystem, Kind: StageEndKind{Stage: stage, Outcome: outcome}}
}

// ProbeStart builds a probe-invocation-starting event.
func ProbeStart(elapsedMS int64, probeID, command string) Event {
	to := ActorProbe
	return Event{ElapsedMS: elapsedMS, From: ActorDispatcher, To: &to, Kind: ProbeStartKind{ProbeID: probeID, Command: command}}
}

// ProbeEnd builds a probe-invocation-ending event.
func ProbeEnd(elapsedMS int64, probeID string, exitCode int, timingMS int64, stdoutPreview string) Event {
	to := ActorDispatcher
	return Event{
		ElapsedMS: elapsedMS,
		From:      ActorProbe,
		To:        &to,
		Kind:      ProbeEndKind{ProbeID: probeID, ExitCode: exitCode, TimingMS: timingMS, StdoutPreview: stdoutPreview},
	}
}

// Note builds a debug-only metadata event.
func Note(elapsedMS int64, text string) Event {
	return Event{ElapsedMS: elapsedMS, From: ActorSystem, Kind: NoteKind{Text: text}}
}

// IsDebugOnly reports whether this event should be suppressed outside debug mode.
func (e Event) IsDebugOnly() bool {
	switch e.Kind.(type) {
	case NoteKind, StageStartKind, StageEndKind:
		return true
	default:
		return false
	}
}

// wireEvent is the flat JSON shape every event kind is folded into and read
// back from. Fields are omitted when the active kind doesn't use them.
type wireEvent struct {
	ElapsedMS int64  `json:"elapsed_ms"`
	From      Actor  `json:"from"`
	To        *Actor `json:"to,omitempty"`
	Type      string `json:"type"`

	Text          string        `json:"text,omitempty"`
	Stage         string        `json:"stage,omitempty"`
	Outcome       *StageOutcome `json:"outcome,omitempty"`
	ProbeID       string        `json:"probe_id,omitempty"`
	Command       string        `json:"command,omitempty"`
	ExitCode      int           `json:"exit_code,omitempty"`
	TimingMS      int64         `json:"timing_ms,omitempty"`
	StdoutPreview string        `json:"stdout_preview,omitempty"`
}

// MarshalJSON flattens the tagged union into a single "type"-discriminated object.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{ElapsedMS: e.ElapsedMS, From: e.From, To: e.To, Type: e.Kind.kindType()}
	switch k := e.Kind.(type) {
	case MessageKind:
		w.Text = k.Text
	case FinalAnswerKind:
		w.Text = k.Text
	case StageStartKind:
		w.Stage = k.Stage
	case StageEndKind:
		w.Stage = k.Stage
		w.Outcome = &k.Outcome
	case ProbeStartKind:
		w.ProbeID = k.ProbeID
		w.Command = k.Command
	case ProbeEndKind:
		w.ProbeID = k.ProbeID
		w.ExitCode = k.ExitCode
		w.TimingMS = k.TimingMS
		w.StdoutPreview = k.StdoutPreview
	case NoteKind:
		w.Text = k.Text
	case UnknownKind:
		w.Type = k.RawType
	}
	return json.Marshal(w)
}

// UnmarshalJSON dispatches on "type". An unrecognized type never errors —
// it decodes to UnknownKind so an older build of this package can still
// read a transcript a newer daemon wrote.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	e.ElapsedMS = w.ElapsedMS
	e.From = w.From
	e.To = w.To

	switch w.Type {
	case "message":
		e.Kind = MessageKind{Text: w.Text}
	case "final_answer":
		e.Kind = FinalAnswerKind{Text: w.Text}
	case "stage_start":
		e.Kind = StageStartKind{Stage: w.Stage}
	case "stage_end":
		outcome := OutcomeOk
		if w.Outcome != nil {
			outcome = *w.Outcome
		}
		e.Kind = StageEndKind{Stage: w.Stage, Outcome: outcome}
	case "probe_start":
		e.Kind = ProbeStartKind{ProbeID: w.ProbeID, Command: w.Command}
	case "probe_end":
		e.Kind = ProbeEndKind{ProbeID: w.ProbeID, ExitCode: w.ExitCode, TimingMS: w.TimingMS, StdoutPreview: w.StdoutPreview}
	case "note":
		e.Kind = NoteKind{Text: w.Text}
	default:
		e.Kind = UnknownKind{RawType: w.Type}
	}
	return nil
}
