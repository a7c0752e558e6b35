package ml

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ModelHolder publishes the active classifier to concurrent readers and lets
// a reload replace it without blocking them.
type ModelHolder struct {
	current atomic.Pointer[loadedModel]
}

type loadedModel struct {
	classifier Classifier
	loadedAt   time.Time
}

func NewModelHolder(c Classifier) *ModelHolder {
	h := &ModelHolder{}
	h.Swap(c)
	return h
}

func (h *ModelHolder) Load() Classifier {
	if m := h.current.Load(); m != nil {
		return m.classifier
	}
	return nil
}

func (h *ModelHolder) LoadedAt() time.Time {
	if m := h.current.Load(); m != nil {
		return m.loadedAt
	}
	return time.Time{}
}

func (h *ModelHolder) Swap(c Classifier) {
	h.current.Store(&loadedModel{classifier: c, loadedAt: time.Now()})
}

// ModelWatcher reloads the model file into a ModelHolder when it changes on
// disk. A reload that fails to load or validate keeps the previous model.
type ModelWatcher struct {
	holder    *ModelHolder
	modelType string
	path      string
	validate  func(Classifier) error
	debounce  time.Duration
	onReload  func(Classifier)
	logger    *zap.Logger
}

func NewModelWatcher(holder *ModelHolder, modelType, path string, validate func(Classifier) error, logger *zap.Logger) *ModelWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelWatcher{
		holder:    holder,
		modelType: modelType,
		path:      filepath.Clean(path),
		validate:  validate,
		debounce:  500 * time.Millisecond,
		logger:    logger,
	}
}

// SetDebounce changes how long the watcher waits for writes to settle.
func (w *ModelWatcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// OnReload registers fn to run after each successful reload.
func (w *ModelWatcher) OnReload(fn func(Classifier)) {
	w.onReload = fn
}

// Run watches the model's directory until ctx is cancelled. The directory is
// watched rather than the file so that atomic rename-into-place is seen.
func (w *ModelWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching model file", zap.String("path", w.path))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(w.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("model watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			if err := w.Reload(); err != nil {
				w.logger.Error("model reload failed, keeping previous model", zap.String("path", w.path), zap.Error(err))
			}
		}
	}
}

// Reload loads the model file now and swaps it in if it validates.
func (w *ModelWatcher) Reload() error {
	model, err := LoadModel(w.modelType, w.path)
	if err != nil {
		return err
	}
	if w.validate != nil {
		if err := w.validate(model); err != nil {
			return err
		}
	}
	w.holder.Swap(model)
	w.logger.Info("model reloaded", zap.String("path", w.path), zap.Int("classes", model.NumClasses()))
	if w.onReload != nil {
		w.onReload(model)
	}
	return nil
}
