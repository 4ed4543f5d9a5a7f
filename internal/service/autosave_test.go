package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingSaver struct {
	calls atomic.Int32
	err   error
}

func (s *countingSaver) Save(ctx context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestAutosaveService_SavesPeriodically(t *testing.T) {
	saver := &countingSaver{}
	svc := NewAutosaveService(saver, zap.NewNop())
	svc.SetInterval(5 * time.Millisecond)

	svc.Start()
	assert.Eventually(t, func() bool { return saver.calls.Load() >= 2 }, time.Second, time.Millisecond)
	svc.Stop()

	after := saver.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, saver.calls.Load())
}

func TestAutosaveService_StopFlushes(t *testing.T) {
	saver := &countingSaver{err: errors.New("read-only filesystem")}
	svc := NewAutosaveService(saver, zap.NewNop())
	svc.SetInterval(time.Hour)

	svc.Start()
	svc.Stop()
	assert.Equal(t, int32(1), saver.calls.Load())
}
