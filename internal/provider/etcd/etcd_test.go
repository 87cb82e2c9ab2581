package etcd

import (
	"testing"
	"time"

	"github.com/coordkit/coordctl/internal/center"
)

func TestInitDefaults(t *testing.T) {
	repo := &Repository{}
	err := repo.Init(center.Config{Name: "etcd-main", Type: Type})
	if err != nil {
		t.Fatalf("expected init to succeed without eager dial, got %v", err)
	}
	defer repo.Close()

	if repo.opTimeout != defaultOpTimeout {
		t.Fatalf("expected default op timeout, got %v", repo.opTimeout)
	}
	if repo.leaseTTL != defaultLeaseTTL {
		t.Fatalf("expected default lease ttl, got %d", repo.leaseTTL)
	}
}

func TestInitProps(t *testing.T) {
	repo := &Repository{}
	err := repo.Init(center.Config{
		Name: "etcd-main",
		Type: Type,
		Props: map[string]string{
			"endpoints":        "10.0.0.1:2379, 10.0.0.2:2379",
			"operationTimeout": "2s",
			"ephemeralTTL":     "60",
		},
	})
	if err != nil {
		t.Fatalf("expected init to succeed, got %v", err)
	}
	defer repo.Close()

	if repo.opTimeout != 2*time.Second {
		t.Fatalf("expected 2s op timeout, got %v", repo.opTimeout)
	}
	if repo.leaseTTL != 60 {
		t.Fatalf("expected 60s lease ttl, got %d", repo.leaseTTL)
	}
	if got := repo.client.Endpoints(); len(got) != 2 {
		t.Fatalf("expected 2 endpoints, got %v", got)
	}
}

func TestSplitEndpoints(t *testing.T) {
	got := splitEndpoints(" a:2379 ,, b:2379 ")
	if len(got) != 2 || got[0] != "a:2379" || got[1] != "b:2379" {
		t.Fatalf("expected trimmed endpoint list, got %v", got)
	}
}
