package anki

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

func versionEndpoint(t *testing.T, reported int) Connection {
	t.Helper()
	return startFakeEndpoint(t, func(action string, params json.RawMessage) (any, string) {
		if action != "version" {
			return nil, "unexpected action " + action
		}
		return reported, ""
	})
}

func TestCurrentBeforeConnect(t *testing.T) {
	Disconnect()

	_, err := Current()
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestConnectInstallsDescriptor(t *testing.T) {
	conn := versionEndpoint(t, DefaultVersion)
	t.Cleanup(Disconnect)

	if err := Connect(context.Background(), conn.Host, conn.Port, conn.Version); err != nil {
		t.Fatalf("connect: %v", err)
	}
	got, err := Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got != conn {
		t.Fatalf("descriptor mismatch: got %+v want %+v", got, conn)
	}
}

func TestConnectFailureLeavesStateUntouched(t *testing.T) {
	good := versionEndpoint(t, DefaultVersion)
	t.Cleanup(Disconnect)

	if err := Connect(context.Background(), good.Host, good.Port, good.Version); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// Port 1 is never listening locally.
	if err := Connect(context.Background(), "localhost", 1, DefaultVersion); err == nil {
		t.Fatalf("expected connect failure")
	}
	got, err := Current()
	if err != nil {
		t.Fatalf("current after failed connect: %v", err)
	}
	if got != good {
		t.Fatalf("failed connect must not replace descriptor: got %+v", got)
	}
}

func TestConnectRejectsOldProtocol(t *testing.T) {
	conn := versionEndpoint(t, 4)
	t.Cleanup(Disconnect)

	err := Connect(context.Background(), conn.Host, conn.Port, 6)
	if err == nil {
		t.Fatalf("expected version mismatch failure")
	}
}

func TestTryConnectNeverErrors(t *testing.T) {
	Disconnect()

	if ok := TryConnect(context.Background(), "localhost", 1, DefaultVersion); ok {
		t.Fatalf("tryConnect against dead port must report false")
	}
	if _, err := Current(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("failed tryConnect must leave state unset, got %v", err)
	}

	conn := versionEndpoint(t, DefaultVersion)
	t.Cleanup(Disconnect)
	if ok := TryConnect(context.Background(), conn.Host, conn.Port, conn.Version); !ok {
		t.Fatalf("tryConnect against live endpoint must report true")
	}
}

func TestConnectCurrentNoTornReads(t *testing.T) {
	a := versionEndpoint(t, DefaultVersion)
	b := versionEndpoint(t, DefaultVersion)
	t.Cleanup(Disconnect)

	if err := Connect(context.Background(), a.Host, a.Port, a.Version); err != nil {
		t.Fatalf("connect: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, err := Current()
				if err != nil {
					t.Errorf("current: %v", err)
					return
				}
				if got != a && got != b {
					t.Errorf("torn descriptor observed: %+v", got)
					return
				}
			}
		}()
	}
	for j := 0; j < 20; j++ {
		conn := a
		if j%2 == 1 {
			conn = b
		}
		if err := Connect(context.Background(), conn.Host, conn.Port, conn.Version); err != nil {
			t.Fatalf("connect during churn: %v", err)
		}
	}
	wg.Wait()
}
