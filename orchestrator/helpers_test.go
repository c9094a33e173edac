package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
	"github.com/aibymlorg/managing-multiagent-intelligence/model"
)

// fakeDispatcher serves fixed adapters and injected dispatch errors.
type fakeDispatcher struct {
	models map[string]model.Model
	names  map[string]string
	errs   map[string]error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{models: map[string]model.Model{}, names: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeDispatcher) add(id, name string, m model.Model) *fakeDispatcher {
	f.models[id] = m
	f.names[id] = name
	return f
}

func (f *fakeDispatcher) Dispatch(id string) (model.Model, error) {
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	m, ok := f.models[id]
	if !ok {
		return nil, &core.UnsupportedProviderError{ProviderID: id}
	}
	return m, nil
}

func (f *fakeDispatcher) DisplayName(id string) string {
	if n, ok := f.names[id]; ok {
		return n
	}
	return id
}

// funcModel adapts a function to model.Model.
type funcModel struct {
	fn    func(ctx context.Context, history []core.Turn, prompt string) (string, error)
	calls atomic.Int32
}

func (m *funcModel) Complete(ctx context.Context, history []core.Turn, prompt string) (string, error) {
	m.calls.Add(1)
	return m.fn(ctx, history, prompt)
}

func (m *funcModel) Info() model.Info { return model.Info{Name: "func", Provider: "test"} }

func delayedModel(d time.Duration, text string) *funcModel {
	return &funcModel{fn: func(context.Context, []core.Turn, string) (string, error) {
		time.Sleep(d)
		return text, nil
	}}
}

func mockReplying(id string) *model.MockModel {
	m := model.NewMockModel(id, "mock")
	m.SetFallback(func(string) string { return fmt.Sprintf("reply from %s", id) })
	return m
}

func providerFailure(id string) error {
	return &core.ProviderError{ProviderID: id, StatusCode: 503, Message: "service unavailable"}
}

func fixedNow() time.Time { return time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC) }

// fast disables pacing so tests run without delays.
func fast(o *Options) {
	o.CallDelay = 0
	o.RoundDelay = 0
	o.Now = fixedNow
}
