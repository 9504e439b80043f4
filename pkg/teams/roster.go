package teams

// Info reports a single team's status and the models it reviews with.
type Info struct {
	Team        Team   `json:"team"`
	Active      bool   `json:"active"`
	JuniorModel string `json:"junior_model"`
	SeniorModel string `json:"senior_model"`
}

// Roster lists every team Anna knows about, for the daemon status RPC.
// TeamLogs has no dedicated roster entry: journal queries fall under
// TeamGeneral review rather than a standalone team, matching the roster the
// daemon reported before per-domain team tracking grew past eight teams.
type Roster struct {
	Teams []Info `json:"teams"`
}

// NewRoster builds a roster with every team active under the given model
// names, used when all teams share one junior/senior model pair.
func NewRoster(juniorModel, seniorModel string) Roster {
	active := func(t Team) Info {
		return Info{Team: t, Active: true, JuniorModel: juniorModel, SeniorModel: seniorModel}
	}
	return Roster{
		Teams: []Info{
			active(TeamDesktop),
			active(TeamStorage),
			active(TeamNetwork),
			active(TeamPerformance),
			active(TeamServices),
			active(TeamSecurity),
			active(TeamHardware),
			active(TeamGeneral),
		},
	}
}

// Get returns the roster entry for a team, if present.
func (r Roster) Get(t Team) (Info, bool) {
	for _, info := range r.Teams {
		if info.Team == t {
			return info, true
		}
	}
	return Info{}, false
}

// ActiveCount returns how many teams are currently active.
func (r Roster) ActiveCount() int {
	n := 0
	for _, info := range r.Teams {
		if info.Active {
			n++
		}
	}
	return n
}
