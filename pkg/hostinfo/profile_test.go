package hostinfo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Collect(t *testing.T) {
	d := NewDetector("/")
	profile, err := d.Collect(context.Background())
	require.NoError(t, err)

	assert.Greater(t, profile.TotalMemoryMB, uint64(0))
	assert.Greater(t, profile.CPUCores, 0)
	assert.NotZero(t, profile.CollectedAtUnix)
	assert.NotEmpty(t, profile.MachineClass)
}

func TestClassifyVirtualization(t *testing.T) {
	cases := []struct {
		system, role string
		wantKind      VirtualizationKind
	}{
		{"", "", VirtualizationNone},
		{"docker", "guest", VirtualizationContainer},
		{"kvm", "guest", VirtualizationVM},
		{"kvm", "host", VirtualizationUnknown},
	}
	for _, c := range cases {
		kind, _ := classifyVirtualization(c.system, c.role)
		assert.Equal(t, c.wantKind, kind, "system=%s role=%s", c.system, c.role)
	}
}

func TestDetectSessionType(t *testing.T) {
	t.Run("ssh takes priority", func(t *testing.T) {
		t.Setenv("SSH_CONNECTION", "10.0.0.1 22 10.0.0.2 22")
		t.Setenv("XDG_SESSION_TYPE", "wayland")
		assert.Equal(t, SessionSSH, detectSessionType())
	})

	t.Run("tty session type is console", func(t *testing.T) {
		t.Setenv("XDG_SESSION_TYPE", "tty")
		assert.Equal(t, SessionConsole, detectSessionType())
	})
}

func TestClassifyMachine(t *testing.T) {
	assert.Equal(t, ClassLaptop, classifyMachine(Profile{}, true))
	assert.Equal(t, ClassDesktop, classifyMachine(Profile{Session: SessionDesktop}, false))
	assert.Equal(t, ClassServerLike, classifyMachine(Profile{Session: SessionHeadless}, false))
}
