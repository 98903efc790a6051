package usecase_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/usecase"
)

func TestRateLimiterStatusUpdate(t *testing.T) {
	limiter := usecase.NewRateLimiter(10*time.Minute, 30*time.Second)
	base := time.Unix(1000, 0)

	t.Run("same channel within the window is suppressed", func(t *testing.T) {
		rec := &model.UserRecord{ID: "U123", Channel: "C1", LatestActivityTime: base}

		gt.Bool(t, limiter.AllowStatusUpdate(rec, "C1", base.Add(time.Minute))).False()
		gt.Bool(t, limiter.AllowStatusUpdate(rec, "C1", base.Add(10*time.Minute-time.Second))).False()
	})

	t.Run("same channel after the window is allowed", func(t *testing.T) {
		rec := &model.UserRecord{ID: "U123", Channel: "C1", LatestActivityTime: base}

		gt.Bool(t, limiter.AllowStatusUpdate(rec, "C1", base.Add(10*time.Minute))).True()
	})

	t.Run("channel change is allowed immediately", func(t *testing.T) {
		rec := &model.UserRecord{ID: "U123", Channel: "C1", LatestActivityTime: base}

		gt.Bool(t, limiter.AllowStatusUpdate(rec, "C2", base.Add(time.Second))).True()
	})

	t.Run("fresh record with no channel is allowed", func(t *testing.T) {
		rec := &model.UserRecord{ID: "U123"}

		gt.Bool(t, limiter.AllowStatusUpdate(rec, "C1", base)).True()
	})
}

func TestRateLimiterDelete(t *testing.T) {
	limiter := usecase.NewRateLimiter(10*time.Minute, 30*time.Second)
	base := time.Unix(1000, 0)

	t.Run("second command within the window is blocked", func(t *testing.T) {
		rec := &model.UserRecord{ID: "U123", LatestDeleteTime: base}

		gt.Bool(t, limiter.AllowDelete(rec, base.Add(29*time.Second))).False()
	})

	t.Run("command after the window is allowed", func(t *testing.T) {
		rec := &model.UserRecord{ID: "U123", LatestDeleteTime: base}

		gt.Bool(t, limiter.AllowDelete(rec, base.Add(30*time.Second))).True()
	})

	t.Run("delete cooldown ignores the channel", func(t *testing.T) {
		rec := &model.UserRecord{ID: "U123", Channel: "C1", LatestDeleteTime: base}

		gt.Bool(t, limiter.AllowDelete(rec, base.Add(time.Second))).False()
	})
}
