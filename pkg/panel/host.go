package panel

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/AbelMSG89/json-synchronized/pkg/docstore"
	"github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
	"github.com/AbelMSG89/json-synchronized/pkg/keytree"
	"github.com/AbelMSG89/json-synchronized/pkg/mutate"
	"github.com/AbelMSG89/json-synchronized/pkg/translate"
)

// Translator is the translation capability the host needs.
// *translate.Service implements it.
type Translator interface {
	Available() bool
	Translate(ctx context.Context, req translate.Request) (translate.Result, error)
}

// Options configures a Host.
type Options struct {
	// Translator serves translate commands. Nil disables translation.
	Translator Translator
	// DefaultLanguage picks the translation source column.
	DefaultLanguage string
	// Notify receives warnings raised outside a request, such as a file
	// that turned invalid. Defaults to a LogDialog.
	Notify Dialog
	// Confirms resolves confirmReply messages. Defaults to a new registry.
	Confirms *Confirmations
	Logger   *log.Logger
}

// Host applies UI commands and file events to one document store. Handle
// calls and watcher callbacks are serialized; a translation's network
// call runs outside the lock.
type Host struct {
	engine   *mutate.Engine
	store    *docstore.Store
	out      Publisher
	tr       Translator
	lang     string
	notify   Dialog
	confirms *Confirmations
	logger   *log.Logger

	mu     sync.Mutex
	closed atomic.Bool
}

// NewHost creates a host over engine that publishes to out.
func NewHost(engine *mutate.Engine, out Publisher, opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	notify := opts.Notify
	if notify == nil {
		notify = LogDialog{Logger: logger}
	}
	confirms := opts.Confirms
	if confirms == nil {
		confirms = NewConfirmations()
	}
	if out == nil {
		out = PublisherFunc(func(Outbound) {})
	}
	return &Host{
		engine:   engine,
		store:    engine.Store(),
		out:      out,
		tr:       opts.Translator,
		lang:     opts.DefaultLanguage,
		notify:   notify,
		confirms: confirms,
		logger:   logger,
	}
}

// Store returns the document store.
func (h *Host) Store() *docstore.Store { return h.store }

// Confirmations returns the registry used for confirmReply messages.
func (h *Host) Confirmations() *Confirmations { return h.confirms }

// Close marks the host closed. Later commands and watcher events are
// ignored; in-flight translations are dropped when they return.
func (h *Host) Close() { h.closed.Store(true) }

// Closed reports whether Close was called.
func (h *Host) Closed() bool { return h.closed.Load() }

// Rows merges the current document set.
func (h *Host) Rows() keytree.Result {
	return keytree.Merge(h.store.Bodies())
}

// SourceLanguage returns the translation source column and its language.
func (h *Host) SourceLanguage() (int, string) {
	return translate.SourceColumn(h.store.Names(), h.lang)
}

// Publish sends the current document set.
func (h *Host) Publish() {
	if h.Closed() {
		return
	}
	h.out.Publish(JSONMessage(h.store.Snapshot()))
}

// Config returns the translation configuration message.
func (h *Host) Config() Outbound {
	_, lang := h.SourceLanguage()
	return ConfigMessage(lang, h.tr != nil && h.tr.Available())
}

// PublishConfig sends the translation configuration.
func (h *Host) PublishConfig() {
	h.out.Publish(h.Config())
}

// HandleRaw decodes data and handles it.
func (h *Host) HandleRaw(ctx context.Context, data []byte, d Dialog) error {
	msg, err := DecodeInbound(data)
	if err != nil {
		d.Error(errors.UserMessage(err))
		return err
	}
	return h.Handle(ctx, msg, d)
}

// Handle applies one UI command. Outcomes are reported through d; the
// error is returned as well. Every successful mutation republishes.
func (h *Host) Handle(ctx context.Context, msg Inbound, d Dialog) error {
	if msg.Command == CmdConfirmReply {
		h.confirms.Resolve(msg.ID, msg.Accepted)
		return nil
	}
	if h.Closed() {
		return nil
	}

	var err error
	switch msg.Command {
	case CmdEdit:
		err = h.edit(ctx, msg, d)
	case CmdAdd:
		err = h.add(ctx, msg, d)
	case CmdRemove:
		err = h.remove(ctx, msg, d)
	case CmdRenameKey:
		err = h.rename(ctx, msg, d)
	case CmdTranslate:
		err = h.translate(ctx, msg, d)
	case CmdShowWarning:
		s, _ := msg.StringValue()
		d.Warn(s)
	case CmdInvalidData:
		s, _ := msg.StringValue()
		h.teardown(s, d)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown command %q", msg.Command)
	}
	if err != nil {
		h.logger.Debug("command failed", "command", msg.Command, "err", err)
		d.Error(errors.UserMessage(err))
	}
	return err
}

func (h *Host) edit(ctx context.Context, msg Inbound, d Dialog) error {
	if msg.FileIndex == nil {
		return errors.New(errors.ErrCodeInvalidInput, "edit: missing fileIndex")
	}
	text, err := msg.StringValue()
	if err != nil {
		return err
	}
	path := jsonval.Path(msg.Key)

	h.mu.Lock()
	defer h.mu.Unlock()
	names := h.store.Names()
	i := *msg.FileIndex
	if i < 0 || i >= len(names) {
		return errors.New(errors.ErrCodeInvalidInput, "edit: file index %d out of range", i)
	}
	if err := h.engine.SetValue(ctx, path, names[i], jsonval.String(text)); err != nil {
		h.publishAfterFailure(err)
		return err
	}
	d.Info(fmt.Sprintf("Updated %s in %s", path, names[i]))
	h.Publish()
	return nil
}

func (h *Host) add(ctx context.Context, msg Inbound, d Dialog) error {
	value, err := msg.Value()
	if err != nil {
		return err
	}
	path := jsonval.Path(msg.Key)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.engine.AddKey(ctx, path, value, nil); err != nil {
		h.publishAfterFailure(err)
		return err
	}
	kind := "field"
	if value.Kind() == jsonval.KindObject {
		kind = "group"
	}
	d.Info(fmt.Sprintf("Added %s %s", kind, path))
	h.Publish()
	return nil
}

func (h *Host) remove(ctx context.Context, msg Inbound, d Dialog) error {
	path := jsonval.Path(msg.Key)
	if err := errors.RequirePath(path); err != nil {
		return err
	}
	ok, err := d.Confirm(ctx, fmt.Sprintf("Remove %q from all files?", path.String()))
	if err != nil || !ok {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Closed() {
		return nil
	}
	names, err := h.engine.RemoveKey(ctx, path, nil)
	if err != nil {
		h.publishAfterFailure(err)
		return err
	}
	if len(names) == 0 {
		d.Warn(fmt.Sprintf("%s was not found", path))
		return nil
	}
	d.Info(fmt.Sprintf("Removed %s from %d file(s)", path, len(names)))
	h.Publish()
	return nil
}

func (h *Host) rename(ctx context.Context, msg Inbound, d Dialog) error {
	path := jsonval.Path(msg.OldPath)

	h.mu.Lock()
	defer h.mu.Unlock()
	names, err := h.engine.RenameKey(ctx, path, msg.NewKey, nil)
	if err != nil {
		h.publishAfterFailure(err)
		return err
	}
	if len(names) > 0 {
		d.Info(fmt.Sprintf("Renamed %s to %s", path, strings.TrimSpace(msg.NewKey)))
		h.Publish()
	}
	return nil
}

// translate runs the request without holding the lock, then maps every
// returned language to its documents. A language that matches no
// document rejects the whole result.
func (h *Host) translate(ctx context.Context, msg Inbound, d Dialog) error {
	if h.tr == nil || !h.tr.Available() {
		return errors.New(errors.ErrCodeUnsupported, "No translation service configured")
	}
	path := jsonval.Path(msg.Key)
	if err := errors.RequirePath(path); err != nil {
		return err
	}
	source := msg.SourceLanguage
	if source == "" {
		_, source = h.SourceLanguage()
	}
	targets := msg.TargetLanguages
	if len(targets) == 0 {
		targets = translate.OtherLanguages(h.store.Names(), source)
	}

	result, terr := h.tr.Translate(ctx, translate.Request{Text: msg.Text, Source: source, Targets: targets})
	if h.Closed() {
		return nil
	}
	if len(result) == 0 {
		if terr != nil {
			return terr
		}
		d.Warn(fmt.Sprintf("No translations returned for %s", path))
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	values, err := h.resolveLanguages(result)
	if err != nil {
		return err
	}
	if _, err := h.engine.SetValues(ctx, path, values); err != nil {
		h.publishAfterFailure(err)
		return err
	}
	langs := make([]string, 0, len(result))
	for lang := range result {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	d.Info(fmt.Sprintf("Translated %s into %s", path, strings.Join(langs, ", ")))
	if terr != nil {
		d.Warn(errors.UserMessage(terr))
	}
	h.Publish()
	return nil
}

func (h *Host) resolveLanguages(result translate.Result) (map[string]jsonval.Value, error) {
	names := h.store.Names()
	values := make(map[string]jsonval.Value)
	for lang, text := range result {
		cols := translate.Columns(names, lang)
		if len(cols) == 0 {
			return nil, errors.New(errors.ErrCodeTranslation, "no file for translated language %q", lang)
		}
		for _, c := range cols {
			values[names[c]] = jsonval.String(text)
		}
	}
	return values, nil
}

// publishAfterFailure republishes when a failed write already changed
// the in-memory copy, so the UI shows what the store holds.
func (h *Host) publishAfterFailure(err error) {
	if errors.Is(err, errors.ErrCodePersist) {
		h.Publish()
	}
}

func (h *Host) teardown(reason string, d Dialog) {
	if reason == "" {
		reason = "Invalid data"
	}
	d.Error(reason)
	h.out.Publish(TeardownMessage(reason))
	h.Close()
}

// Updated implements watch.Handler.
func (h *Host) Updated(path string, body *jsonval.Object) {
	if h.Closed() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	name, changed := h.store.Upsert(path, body)
	if !changed {
		return
	}
	h.logger.Debug("document changed on disk", "name", name)
	h.Publish()
}

// Invalidated implements watch.Handler. The user is warned once per
// transition from valid to invalid.
func (h *Host) Invalidated(path string, reason error) {
	if h.Closed() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	name, wasActive := h.store.Invalidate(path)
	if !wasActive {
		return
	}
	h.notify.Warn(fmt.Sprintf("%s is excluded: %v", name, reason))
	h.Publish()
}

// Removed implements watch.Handler.
func (h *Host) Removed(path string) {
	if h.Closed() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if name, removed := h.store.Remove(path); removed {
		h.logger.Debug("document removed", "name", name)
		h.Publish()
	}
}
