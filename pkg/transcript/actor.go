// Package transcript is the single source of truth for rendering a
// ticket's pipeline activity: every component appends events here in
// chronological order, and nothing else renders directly from internal
// state.
package transcript

// Actor identifies who is speaking or acting in a transcript event.
type Actor string

const (
	ActorYou        Actor = "you"
	ActorAnna       Actor = "anna"
	ActorTranslator Actor = "translator"
	ActorDispatcher Actor = "dispatcher"
	ActorProbe      Actor = "probe"
	ActorSpecialist Actor = "specialist"
	ActorSupervisor Actor = "supervisor"
	ActorSystem     Actor = "system"
)
