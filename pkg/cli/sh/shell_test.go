package sh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dps.go/pkg/env"
)

func TestConnectClosesCurrentSessionFirst(t *testing.T) {
	var canceled bool
	doneCh := make(chan struct{})
	s := &Shell{Config: &env.Config{Device: filepath.Join(os.TempDir(), "dps-no-such-tty")}}
	s.Session = &Session{
		Device: "old",
		Cancel: func() {
			canceled = true
			close(doneCh)
		},
		doneCh: doneCh,
	}
	require.Error(t, s.Connect(""))
	require.True(t, canceled)
	require.Nil(t, s.Session)
}
