package usecase_test

import (
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/usecase"
)

func TestCacheAccept(t *testing.T) {
	t.Run("same event delivered twice is rejected once", func(t *testing.T) {
		cache := usecase.NewCache()

		gt.Bool(t, cache.Accept("Ev001", 100)).True()
		gt.Bool(t, cache.Accept("Ev001", 100)).False()
	})

	t.Run("older event than the slot is rejected", func(t *testing.T) {
		cache := usecase.NewCache()

		gt.Bool(t, cache.Accept("Ev001", 10)).True()
		gt.Bool(t, cache.Accept("Ev002", 5)).False()
	})

	t.Run("equal timestamp with a new ID is accepted", func(t *testing.T) {
		cache := usecase.NewCache()

		gt.Bool(t, cache.Accept("Ev001", 10)).True()
		gt.Bool(t, cache.Accept("Ev002", 10)).True()
	})

	t.Run("accepted event replaces the slot", func(t *testing.T) {
		cache := usecase.NewCache()

		gt.Bool(t, cache.Accept("Ev001", 10)).True()
		gt.Bool(t, cache.Accept("Ev002", 20)).True()
		// Ev001 is no longer remembered; only staleness rejects it now
		gt.Bool(t, cache.Accept("Ev001", 30)).True()
	})

	t.Run("concurrent redeliveries accept exactly once", func(t *testing.T) {
		cache := usecase.NewCache()

		const workers = 32
		var wg sync.WaitGroup
		accepted := make(chan bool, workers)

		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				accepted <- cache.Accept("Ev100", 100)
			}()
		}
		wg.Wait()
		close(accepted)

		count := 0
		for ok := range accepted {
			if ok {
				count++
			}
		}
		gt.Number(t, count).Equal(1)
	})
}

func TestCacheUserRecords(t *testing.T) {
	t.Run("Get returns a snapshot detached from the store", func(t *testing.T) {
		cache := usecase.NewCache()
		cache.Put(&model.UserRecord{ID: "U123", Token: "xoxp-1"})

		rec, ok := cache.Get("U123")
		gt.Bool(t, ok).True()
		rec.Token = "tampered"

		again, ok := cache.Get("U123")
		gt.Bool(t, ok).True()
		gt.Value(t, again.Token).Equal("xoxp-1")
	})

	t.Run("Put stores a copy of the given record", func(t *testing.T) {
		cache := usecase.NewCache()
		rec := &model.UserRecord{ID: "U123", Channel: "C1"}
		cache.Put(rec)
		rec.Channel = "C2"

		got, ok := cache.Get("U123")
		gt.Bool(t, ok).True()
		gt.Value(t, got.Channel.String()).Equal("C1")
	})

	t.Run("unknown user is a miss", func(t *testing.T) {
		cache := usecase.NewCache()

		_, ok := cache.Get("U999")
		gt.Bool(t, ok).False()
		gt.Number(t, cache.Len()).Equal(0)
	})

	t.Run("records without an ID are discarded", func(t *testing.T) {
		cache := usecase.NewCache()
		cache.Put(nil)
		cache.Put(&model.UserRecord{})

		gt.Number(t, cache.Len()).Equal(0)
	})
}

func TestCacheLockUser(t *testing.T) {
	t.Run("serializes mutation of the same user", func(t *testing.T) {
		cache := usecase.NewCache()
		cache.Put(&model.UserRecord{ID: "U123"})

		const workers = 16
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := cache.LockUser("U123")
				defer unlock()

				rec, _ := cache.Get("U123")
				rec.LatestActivityTime = time.Unix(int64(i), 0)
				cache.Put(rec)
			}()
		}
		wg.Wait()

		rec, ok := cache.Get("U123")
		gt.Bool(t, ok).True()
		gt.Bool(t, rec.LatestActivityTime.IsZero()).False()
	})

	t.Run("different users do not block each other", func(t *testing.T) {
		cache := usecase.NewCache()

		unlockA := cache.LockUser("U1")
		done := make(chan struct{})
		go func() {
			unlockB := cache.LockUser("U2")
			unlockB()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on U2 blocked by U1")
		}
		unlockA()
	})
}
