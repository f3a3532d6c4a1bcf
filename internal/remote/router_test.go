// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/cobdeps/cobdeps/internal/profile"
	"github.com/cobdeps/cobdeps/internal/testutil"
)

func TestRouter_DispatchesOnType(t *testing.T) {
	t.Parallel()

	zos := testutil.NewRecordingRemote().AddMember("HLQ.A", "X", []byte("zos"))
	local := testutil.NewRecordingRemote().AddMember("HLQ.A", "X", []byte("local"))
	router := NewRouter().Register(profile.TypeZOSMF, zos).Register(profile.TypeLocal, local)

	ctx := context.Background()
	data, err := router.FetchContent(ctx, "HLQ.A", "X", profile.Profile{Name: "p", Type: profile.TypeLocal})
	if err != nil || string(data) != "local" {
		t.Fatalf("FetchContent() = %q, %v", data, err)
	}
	if _, err := router.ListMembers(ctx, "HLQ.A", profile.Profile{Name: "q", Type: profile.TypeZOSMF}); err != nil {
		t.Fatal(err)
	}

	if len(zos.Calls()) != 1 || len(local.Calls()) != 1 {
		t.Errorf("calls zos=%d local=%d, want 1 each", len(zos.Calls()), len(local.Calls()))
	}
}

func TestRouter_UnknownType(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	_, err := router.ListMembers(context.Background(), "HLQ.A", profile.Profile{Name: "p", Type: profile.TypeS3})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("error = %v, want ErrUnsupportedType", err)
	}
}
