package service

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/repository"
)

// In-memory repository fakes shared across the service tests.

type fakeTechnicianRepo struct {
	mu    sync.Mutex
	items map[string]*domain.Technician
}

func newFakeTechnicianRepo() *fakeTechnicianRepo {
	return &fakeTechnicianRepo{items: map[string]*domain.Technician{}}
}

func (f *fakeTechnicianRepo) Create(_ context.Context, technician *domain.Technician) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if technician.ID.IsZero() {
		technician.ID = primitive.NewObjectID()
	}
	copied := *technician
	f.items[technician.ID.Hex()] = &copied
	return nil
}

func (f *fakeTechnicianRepo) Update(_ context.Context, technician *domain.Technician) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[technician.ID.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *technician
	f.items[technician.ID.Hex()] = &copied
	return nil
}

func (f *fakeTechnicianRepo) GetByID(_ context.Context, id string) (*domain.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	technician, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *technician
	return &copied, nil
}

func (f *fakeTechnicianRepo) List(_ context.Context) ([]domain.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Technician, 0, len(f.items))
	for _, technician := range f.items {
		out = append(out, *technician)
	}
	return out, nil
}

func (f *fakeTechnicianRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.items, id)
	return nil
}

type fakeControlRepo struct {
	mu            sync.Mutex
	items         map[string]*domain.Control
	clearedOwners []primitive.ObjectID
}

func newFakeControlRepo() *fakeControlRepo {
	return &fakeControlRepo{items: map[string]*domain.Control{}}
}

func (f *fakeControlRepo) Create(_ context.Context, control *domain.Control) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if control.ID.IsZero() {
		control.ID = primitive.NewObjectID()
	}
	copied := *control
	f.items[control.ID.Hex()] = &copied
	return nil
}

func (f *fakeControlRepo) Update(_ context.Context, control *domain.Control) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[control.ID.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *control
	f.items[control.ID.Hex()] = &copied
	return nil
}

func (f *fakeControlRepo) GetByID(_ context.Context, id string) (*domain.Control, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	control, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *control
	return &copied, nil
}

func (f *fakeControlRepo) List(_ context.Context, _ repository.ControlFilter) ([]domain.Control, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Control, 0, len(f.items))
	for _, control := range f.items {
		out = append(out, *control)
	}
	return out, nil
}

func (f *fakeControlRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.items, id)
	return nil
}

func (f *fakeControlRepo) SetTicket(_ context.Context, id, ticketNumber, ticketURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	control, ok := f.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	control.TicketNumber = ticketNumber
	control.TicketURL = ticketURL
	return nil
}

func (f *fakeControlRepo) ClearAssignee(_ context.Context, assigneeID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearedOwners = append(f.clearedOwners, assigneeID)
	for _, control := range f.items {
		if control.AssigneeID != nil && *control.AssigneeID == assigneeID {
			control.AssigneeID = nil
		}
	}
	return nil
}

type fakeTaskRepo struct {
	mu            sync.Mutex
	items         map[string]*domain.Task
	reorders      [][]repository.TaskOrderUpdate
	clearedGroups []primitive.ObjectID
	clearedOwners []primitive.ObjectID
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{items: map[string]*domain.Task{}}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	copied := *task
	f.items[task.ID.Hex()] = &copied
	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[task.ID.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *task
	f.items[task.ID.Hex()] = &copied
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) List(_ context.Context, _ repository.TaskFilter) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Task, 0, len(f.items))
	for _, task := range f.items {
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.items, id)
	return nil
}

func (f *fakeTaskRepo) Reorder(_ context.Context, updates []repository.TaskOrderUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorders = append(f.reorders, updates)
	for _, update := range updates {
		if task, ok := f.items[update.ID]; ok {
			task.Order = update.Order
		}
	}
	return nil
}

func (f *fakeTaskRepo) ClearGroup(_ context.Context, groupID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearedGroups = append(f.clearedGroups, groupID)
	for _, task := range f.items {
		if task.GroupID != nil && *task.GroupID == groupID {
			task.GroupID = nil
		}
	}
	return nil
}

func (f *fakeTaskRepo) ClearAssignee(_ context.Context, assigneeID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearedOwners = append(f.clearedOwners, assigneeID)
	for _, task := range f.items {
		if task.AssigneeID != nil && *task.AssigneeID == assigneeID {
			task.AssigneeID = nil
		}
	}
	return nil
}

type fakeGroupRepo struct {
	mu    sync.Mutex
	items map[string]*domain.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{items: map[string]*domain.Group{}}
}

func (f *fakeGroupRepo) Create(_ context.Context, group *domain.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	copied := *group
	f.items[group.ID.Hex()] = &copied
	return nil
}

func (f *fakeGroupRepo) Update(_ context.Context, group *domain.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[group.ID.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *group
	f.items[group.ID.Hex()] = &copied
	return nil
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id string) (*domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *group
	return &copied, nil
}

func (f *fakeGroupRepo) List(_ context.Context) ([]domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Group, 0, len(f.items))
	for _, group := range f.items {
		out = append(out, *group)
	}
	return out, nil
}

func (f *fakeGroupRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.items, id)
	return nil
}

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.ExtractionJob
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[string]*domain.ExtractionJob{}}
}

func (f *fakeJobStore) Save(_ context.Context, job *domain.ExtractionJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobStore) Get(_ context.Context, id string) (*domain.ExtractionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *job
	return &copied, nil
}

// fakeProvider returns canned completions in order, then repeats the last one.
type fakeProvider struct {
	name      domain.ExtractionProvider
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeProvider) Name() domain.ExtractionProvider {
	return f.name
}

func (f *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}
