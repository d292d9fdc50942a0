package lifecycle

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarth-shah20/stasis-storage/internal/docker"
	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
	"github.com/sarth-shah20/stasis-storage/internal/prompt"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
	"github.com/sarth-shah20/stasis-storage/internal/store"
)

type memPersister struct {
	doc   *store.Document
	saves int
}

func (p *memPersister) Load() (*store.Document, error) {
	if p.doc == nil {
		return nil, store.ErrNoDocument
	}
	return p.doc, nil
}

func (p *memPersister) Save(doc *store.Document) error {
	p.saves++
	p.doc = doc
	return nil
}

type fakeContainer struct {
	spec    docker.ContainerSpec
	running bool
}

// fakeDriver keeps containers and volumes in memory and records every call
// as "Method arg".
type fakeDriver struct {
	noVolumes  bool
	volumes    map[string]bool
	networks   map[string]bool
	containers map[string]*fakeContainer
	calls      []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		volumes:    map[string]bool{},
		networks:   map[string]bool{},
		containers: map[string]*fakeContainer{},
	}
}

func (d *fakeDriver) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDriver) called(name string) bool {
	for _, c := range d.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (d *fakeDriver) SupportsVolumes(context.Context) (bool, error) {
	d.record("SupportsVolumes")
	return !d.noVolumes, nil
}

func (d *fakeDriver) EnsureNetwork(_ context.Context, name string) error {
	d.record("EnsureNetwork %s", name)
	d.networks[name] = true
	return nil
}

func (d *fakeDriver) HasVolume(_ context.Context, name string) (bool, error) {
	d.record("HasVolume %s", name)
	return d.volumes[name], nil
}

func (d *fakeDriver) CreateVolume(_ context.Context, name string) error {
	d.record("CreateVolume %s", name)
	d.volumes[name] = true
	return nil
}

func (d *fakeDriver) RemoveVolume(_ context.Context, name string) error {
	d.record("RemoveVolume %s", name)
	delete(d.volumes, name)
	return nil
}

func (d *fakeDriver) GetContainer(_ context.Context, name string) (*docker.Container, error) {
	d.record("GetContainer %s", name)
	c, ok := d.containers[name]
	if !ok {
		return nil, nil
	}
	return &docker.Container{Name: name, Image: c.spec.Image, Labels: c.spec.Labels}, nil
}

func (d *fakeDriver) CreateContainer(_ context.Context, spec docker.ContainerSpec) (*docker.Container, error) {
	d.record("CreateContainer %s", spec.Name)
	d.containers[spec.Name] = &fakeContainer{spec: spec}
	return &docker.Container{Name: spec.Name, Image: spec.Image, State: "created"}, nil
}

func (d *fakeDriver) RemoveContainer(_ context.Context, name string) error {
	d.record("RemoveContainer %s", name)
	delete(d.containers, name)
	return nil
}

func (d *fakeDriver) Inspect(_ context.Context, name string) (*docker.ContainerState, error) {
	d.record("Inspect %s", name)
	c, ok := d.containers[name]
	if !ok {
		return nil, fmt.Errorf("no such container: %s", name)
	}
	state := &docker.ContainerState{Running: c.running, Status: "exited"}
	if c.running {
		state.Status = "running"
		state.IP = "172.20.0.2"
	}
	return state, nil
}

func (d *fakeDriver) StartContainer(_ context.Context, name string) error {
	d.record("StartContainer %s", name)
	c, ok := d.containers[name]
	if !ok {
		return fmt.Errorf("no such container: %s", name)
	}
	c.running = true
	return nil
}

func (d *fakeDriver) ListContainers(context.Context) ([]docker.Container, error) {
	d.record("ListContainers")
	out := []docker.Container{}
	for name, c := range d.containers {
		out = append(out, docker.Container{Name: name, Labels: c.spec.Labels})
	}
	return out, nil
}

type fakeProxy struct {
	starts int
}

func (p *fakeProxy) Start(context.Context) error {
	p.starts++
	return nil
}

// fakePrompter answers from a script. An answer rejected by the validator is
// recorded and the next one is used, like a user typing again.
type fakePrompter struct {
	answers  []string
	confirms []bool
	asked    []string
	rejected []string
}

func (p *fakePrompter) next(message string, validate prompt.Validator) (string, error) {
	for {
		if len(p.answers) == 0 {
			return "", errdefs.Aborted("no answer scripted for %q", message)
		}
		p.asked = append(p.asked, message)
		answer := p.answers[0]
		p.answers = p.answers[1:]
		if validate != nil {
			if err := validate(answer); err != nil {
				p.rejected = append(p.rejected, answer)
				continue
			}
		}
		return answer, nil
	}
}

func (p *fakePrompter) Text(message string, validate prompt.Validator) (string, error) {
	return p.next(message, validate)
}

func (p *fakePrompter) Secret(message string, validate prompt.Validator) (string, error) {
	return p.next(message, validate)
}

func (p *fakePrompter) Select(message string, options []prompt.Option) (string, error) {
	return p.next(message, func(v string) error {
		for _, o := range options {
			if o.Value == v {
				return nil
			}
		}
		return fmt.Errorf("not an option: %s", v)
	})
}

func (p *fakePrompter) Confirm(message string, def bool) (bool, error) {
	p.asked = append(p.asked, message)
	if len(p.confirms) == 0 {
		return def, nil
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

type fakeProber struct {
	hosts []string
	err   error
}

func (p *fakeProber) Probe(_ context.Context, s *storage.Storage, host string) (string, error) {
	p.hosts = append(p.hosts, host)
	if p.err != nil {
		return "", p.err
	}
	return "ok " + s.Name(), nil
}

type harness struct {
	m         *Manager
	persister *memPersister
	driver    *fakeDriver
	proxy     *fakeProxy
	prompter  *fakePrompter
	out       *bytes.Buffer
}

// newHarness builds a manager over doc. A nil doc behaves like a fresh install.
func newHarness(t *testing.T, doc *store.Document, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		persister: &memPersister{doc: doc},
		driver:    newFakeDriver(),
		proxy:     &fakeProxy{},
		prompter:  &fakePrompter{},
		out:       &bytes.Buffer{},
	}
	opts = append([]Option{WithOutput(h.out)}, opts...)
	h.m = New(h.persister, h.driver, h.proxy, h.prompter, opts...)
	return h
}

func (h *harness) store(t *testing.T) *store.Store {
	t.Helper()
	cfg, err := h.m.Store()
	require.NoError(t, err)
	return cfg
}

func minioProps(name string) storage.Props {
	return storage.Props{Name: name, Type: storage.TypeMinio, Username: "abc", Password: "longpass1"}
}

func redisProps(name string) storage.Props {
	return storage.Props{Name: name, Type: storage.TypeRedis}
}

func document(def string, props ...storage.Props) *store.Document {
	return &store.Document{Default: def, Storages: props}
}
