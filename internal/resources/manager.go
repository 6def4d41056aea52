package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/devhunt/devhunt-agent/internal/clients/devhunt"
	"github.com/devhunt/devhunt-agent/internal/logger"
	"github.com/devhunt/devhunt-agent/internal/metrics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"net/url"
	"slices"
	"strings"
	"sync"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotConfirmed   = errors.New("deletion not confirmed")
	ErrDialogClosed   = errors.New("dialog is closed")
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownField   = errors.New("unknown field")
)

type restClient interface {
	List(ctx context.Context, endpoint string) ([]json.RawMessage, error)
	Create(ctx context.Context, endpoint string, fields url.Values) (json.RawMessage, error)
	Update(ctx context.Context, endpoint string, id int, fields url.Values) (json.RawMessage, error)
	Delete(ctx context.Context, endpoint string, id int) error
}

// Manager runs list/create/edit/delete for one ResourceConfig. Every mutation is followed
// by a full refetch before it returns.
type Manager struct {
	config ResourceConfig
	client restClient
	alerts *Alerts

	mu      sync.Mutex
	records []Record
	loading bool
	dialog  Dialog
}

func NewManager(config ResourceConfig, client restClient, alerts *Alerts) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid resource config")
	}
	if client == nil {
		return nil, errors.New("client is nil")
	}
	if alerts == nil {
		return nil, errors.New("alerts is nil")
	}
	return &Manager{config: config, client: client, alerts: alerts, records: []Record{}}, nil
}

func (m *Manager) Config() ResourceConfig {
	return m.config
}

// FetchAll replaces the list with the server state. On failure the previous list is kept.
func (m *Manager) FetchAll(ctx context.Context) ([]Record, error) {
	m.setLoading(true)
	defer m.setLoading(false)

	failure := fmt.Sprintf("Failed to fetch %ss", m.config.ItemName)

	items, err := m.client.List(ctx, m.config.Endpoint)
	if err != nil {
		return nil, m.fail("fetch", failure, err)
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		var record Record
		if err := json.Unmarshal(item, &record); err != nil {
			return nil, m.fail("fetch", failure, errors.Wrap(err, "decode record"))
		}
		records = append(records, record)
	}

	m.mu.Lock()
	m.records = records
	m.mu.Unlock()

	m.count("fetch", true)
	return m.Records(), nil
}

func (m *Manager) Create(ctx context.Context, values map[string]string) (Record, error) {
	if err := m.checkRequired(values); err != nil {
		return Record{}, err
	}

	body, err := m.client.Create(ctx, m.config.Endpoint, m.form(values))
	if err != nil {
		return Record{}, m.fail("create", fmt.Sprintf("Failed to create %s", m.config.ItemName), err)
	}

	return m.succeeded(ctx, "create", fmt.Sprintf("%s created", m.config.ItemName), body, values), nil
}

func (m *Manager) Update(ctx context.Context, id int, values map[string]string) (Record, error) {
	if err := m.checkRequired(values); err != nil {
		return Record{}, err
	}

	body, err := m.client.Update(ctx, m.config.Endpoint, id, m.form(values))
	if err != nil {
		return Record{}, m.fail("update", fmt.Sprintf("Failed to update %s", m.config.ItemName), err)
	}

	return m.succeeded(ctx, "update", fmt.Sprintf("%s updated", m.config.ItemName), body, values), nil
}

// Delete asks confirm first and issues no request unless it returns true.
// A failed delete leaves the list untouched.
func (m *Manager) Delete(ctx context.Context, id int, confirm func(prompt string) bool) error {
	prompt := fmt.Sprintf("Delete %s #%d?", strings.ToLower(m.config.ItemName), id)
	if confirm == nil || !confirm(prompt) {
		return ErrNotConfirmed
	}

	if err := m.client.Delete(ctx, m.config.Endpoint, id); err != nil {
		return m.fail("delete", fmt.Sprintf("Failed to delete %s", m.config.ItemName), err)
	}

	m.count("delete", true)
	m.alerts.Push(SeveritySuccess, fmt.Sprintf("%s deleted", m.config.ItemName))
	_, _ = m.FetchAll(ctx)
	return nil
}

func (m *Manager) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}

func (m *Manager) Find(id int) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Find(m.records, func(r Record) bool { return r.ID == id })
}

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) Dialog() Dialog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dialog.clone()
}

func (m *Manager) OpenAdd() Dialog {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog = newAddDialog(m.config)
	return m.dialog.clone()
}

func (m *Manager) OpenEdit(id int) (Dialog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, found := lo.Find(m.records, func(r Record) bool { return r.ID == id })
	if !found {
		return Dialog{}, errors.Wrapf(ErrRecordNotFound, "%s #%d", m.config.ItemName, id)
	}
	m.dialog = newEditDialog(m.config, record)
	return m.dialog.clone(), nil
}

func (m *Manager) SetField(name, value string) (Dialog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dialog.IsOpen() {
		return Dialog{}, ErrDialogClosed
	}
	if _, found := m.config.Field(name); !found {
		return Dialog{}, errors.Wrapf(ErrUnknownField, "%q", name)
	}
	m.dialog.set(m.config, name, value)
	return m.dialog.clone(), nil
}

// Submit sends the dialog as a create or update. The dialog closes on success and keeps
// the entered values on failure.
func (m *Manager) Submit(ctx context.Context) (Record, error) {
	dialog := m.Dialog()
	if !dialog.IsOpen() {
		return Record{}, ErrDialogClosed
	}

	var (
		record Record
		err    error
	)
	if dialog.Mode == DialogEdit {
		record, err = m.Update(ctx, dialog.RecordID, dialog.Values)
	} else {
		record, err = m.Create(ctx, dialog.Values)
	}
	if err != nil {
		return Record{}, err
	}

	m.Cancel()
	return record, nil
}

func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog = Dialog{}
}

func (m *Manager) checkRequired(values map[string]string) error {
	missing := lo.FilterMap(m.config.Fields, func(f FieldSpec, _ int) (string, bool) {
		return f.DisplayName(), f.Required && strings.TrimSpace(values[f.Name]) == ""
	})
	if len(missing) == 0 {
		return nil
	}

	text := fmt.Sprintf("%s: %s required", m.config.ItemName, strings.Join(missing, ", "))
	m.alerts.Push(SeverityWarning, text)
	return errors.Wrap(ErrValidation, text)
}

func (m *Manager) form(values map[string]string) url.Values {
	form := url.Values{}
	for _, f := range m.config.Fields {
		form.Set(f.Name, values[f.Name])
	}
	return form
}

func (m *Manager) succeeded(ctx context.Context, operation, text string, body json.RawMessage, values map[string]string) Record {
	m.count(operation, true)
	m.alerts.Push(SeveritySuccess, text)

	record := Record{Values: values}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &record); err != nil {
			log.Debugf("can't decode %s response: %v", operation, err)
			record = Record{Values: values}
		}
	}

	_, _ = m.FetchAll(ctx)
	return record
}

// fail alerts the user. A rejected create or update carries the server's validation text, shown verbatim.
func (m *Manager) fail(operation, text string, err error) error {
	m.count(operation, false)
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("%s %s failed: %v", operation, m.config.Endpoint, err)

	if operation == "create" || operation == "update" {
		if statusErr, ok := devhunt.IsClientError(err); ok && strings.TrimSpace(statusErr.Body) != "" {
			text = statusErr.Body
		}
	}
	m.alerts.Push(SeverityError, text)
	return err
}

func (m *Manager) count(operation string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	metrics.ResourceOperations.WithLabelValues(m.config.ItemName, operation, result).Inc()
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}
