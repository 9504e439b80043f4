package teams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDomain(t *testing.T) {
	assert.Equal(t, TeamStorage, FromDomain("storage"))
	assert.Equal(t, TeamStorage, FromDomain("disk"))
	assert.Equal(t, TeamNetwork, FromDomain("network"))
	assert.Equal(t, TeamPerformance, FromDomain("memory"))
	assert.Equal(t, TeamPerformance, FromDomain("cpu"))
	assert.Equal(t, TeamServices, FromDomain("systemd"))
	assert.Equal(t, TeamSecurity, FromDomain("firewall"))
	assert.Equal(t, TeamHardware, FromDomain("audio"))
	assert.Equal(t, TeamDesktop, FromDomain("gui"))
	assert.Equal(t, TeamLogs, FromDomain("journal"))
	assert.Equal(t, TeamGeneral, FromDomain("unknown"))
}

func TestTeam_IsValid(t *testing.T) {
	assert.True(t, TeamStorage.IsValid())
	assert.False(t, Team("bogus").IsValid())
}

func TestRoster_NewRosterAllActive(t *testing.T) {
	r := NewRoster("local-junior", "local-senior")
	assert.Equal(t, 8, r.ActiveCount())

	storage, ok := r.Get(TeamStorage)
	assert.True(t, ok)
	assert.True(t, storage.Active)
	assert.Equal(t, "local-junior", storage.JuniorModel)

	_, ok = r.Get(TeamLogs)
	assert.False(t, ok)
}
