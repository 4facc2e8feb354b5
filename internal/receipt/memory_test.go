package receipt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func testReceipt(hash, txid string) Receipt {
	return Receipt{
		Hash:             hash,
		Chain:            "eth",
		TxID:             txid,
		ManifestHash:     "manifest",
		ConstitutionHash: "constitution",
		Product:          "VO-Web32",
		IssuedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Signature:        "sig-" + txid,
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "deadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	want := testReceipt("deadbeef", "tx1")
	if err := store.Put(context.Background(), want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("receipt = %+v, want %+v", got, want)
	}
}

func TestMemoryStorePutIfAbsentKeepsFirst(t *testing.T) {
	store := NewMemoryStore()
	first := testReceipt("deadbeef", "tx1")
	second := testReceipt("deadbeef", "tx2")

	stored, inserted, err := store.PutIfAbsent(context.Background(), first)
	if err != nil {
		t.Fatalf("first put: %v", err)
	}
	if !inserted || stored != first {
		t.Fatalf("first put: inserted = %v, stored = %+v", inserted, stored)
	}

	stored, inserted, err = store.PutIfAbsent(context.Background(), second)
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if inserted {
		t.Fatal("second put must not insert")
	}
	if stored != first {
		t.Fatalf("second put returned %+v, want first receipt", stored)
	}
}

func TestMemoryStorePutIfAbsentConcurrent(t *testing.T) {
	store := NewMemoryStore()
	const racers = 16

	var wg sync.WaitGroup
	inserts := make(chan string, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := testReceipt("deadbeef", string(rune('a'+i)))
			stored, inserted, err := store.PutIfAbsent(context.Background(), r)
			if err != nil {
				t.Errorf("put: %v", err)
				return
			}
			if inserted {
				inserts <- stored.TxID
			}
		}(i)
	}
	wg.Wait()
	close(inserts)

	var winners []string
	for txid := range inserts {
		winners = append(winners, txid)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one durable anchor, got %d", len(winners))
	}
	got, err := store.Get(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TxID != winners[0] {
		t.Fatalf("stored txid = %s, want winner %s", got.TxID, winners[0])
	}
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Put(ctx, testReceipt("deadbeef", "tx1")); !errors.Is(err, context.Canceled) {
		t.Fatalf("put error = %v, want context.Canceled", err)
	}
	if _, err := store.Get(ctx, "deadbeef"); !errors.Is(err, context.Canceled) {
		t.Fatalf("get error = %v, want context.Canceled", err)
	}
}
