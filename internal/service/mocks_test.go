package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/blob"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/platform/nanabanana"
	"github.com/mgnegypt/nano-image/internal/provision"
	"github.com/mgnegypt/nano-image/internal/store"
)

// passTx is a TxRunner that executes the function directly. The fake stores
// ignore WithTx, so a nil transaction is fine.
func passTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeAccountStore is an in-memory store.AccountStore.
type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account

	createErr    error
	incrementErr error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (s *fakeAccountStore) Create(ctx context.Context, account *domain.Account) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *fakeAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *fakeAccountStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Account
	for _, account := range s.accounts {
		if account.OwnerID == ownerID {
			cp := *account
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeAccountStore) IncrementUse(ctx context.Context, id uuid.UUID) error {
	if s.incrementErr != nil {
		return s.incrementErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return store.ErrAccountNotFound
	}
	account.UseCount++
	return nil
}

func (s *fakeAccountStore) WithTx(tx *sql.Tx) store.AccountStore { return s }

// fakeTaskStore is an in-memory store.TaskStore keyed by remote ID.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task

	createErr error
	updates   int
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.RemoteID]; ok {
		return store.ErrRemoteIDExists
	}
	cp := *task
	s.tasks[task.RemoteID] = &cp
	return nil
}

func (s *fakeTaskStore) GetByRemoteID(ctx context.Context, remoteID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[remoteID]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (s *fakeTaskStore) UpdateStatus(ctx context.Context, remoteID string, status domain.TaskStatus, resultURL, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[remoteID]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	task.ResultURL = resultURL
	task.ErrorMessage = errorMessage
	s.updates++
	return nil
}

func (s *fakeTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.OwnerID == ownerID {
			cp := *task
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// fakeArtifactStore is an in-memory store.ArtifactStore.
type fakeArtifactStore struct {
	mu        sync.Mutex
	artifacts []*domain.Artifact
	createErr error
}

func (s *fakeArtifactStore) Create(ctx context.Context, artifact *domain.Artifact) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *artifact
	s.artifacts = append(s.artifacts, &cp)
	return nil
}

func (s *fakeArtifactStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Artifact
	for _, artifact := range s.artifacts {
		if artifact.OwnerID == ownerID {
			out = append(out, artifact)
		}
	}
	return out, nil
}

func (s *fakeArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore { return s }

// fakeUploadStore is an in-memory store.UploadStore.
type fakeUploadStore struct {
	mu      sync.Mutex
	uploads map[uuid.UUID]*domain.Upload
}

func newFakeUploadStore() *fakeUploadStore {
	return &fakeUploadStore{uploads: make(map[uuid.UUID]*domain.Upload)}
}

func (s *fakeUploadStore) Create(ctx context.Context, upload *domain.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *upload
	s.uploads[upload.ID] = &cp
	return nil
}

func (s *fakeUploadStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	upload, ok := s.uploads[id]
	if !ok {
		return nil, store.ErrUploadNotFound
	}
	cp := *upload
	return &cp, nil
}

func (s *fakeUploadStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Upload
	for _, upload := range s.uploads {
		if upload.OwnerID == ownerID {
			cp := *upload
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeUploadStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[id]; !ok {
		return store.ErrUploadNotFound
	}
	delete(s.uploads, id)
	return nil
}

// fakeProvider is a scriptable service.GenerationClient.
type fakeProvider struct {
	uploadURL  string
	uploadErr  error
	uploadData []byte

	createRemoteID string
	createErr      error
	createCalls    int
	lastPrompt     string
	lastImageURLs  []string
	lastSession    string

	state       nanabanana.TaskState
	statusErr   error
	statusCalls int

	downloadData []byte
	downloadErr  error
}

func (p *fakeProvider) Upload(ctx context.Context, sess *nanabanana.Session, filename string, data []byte) (string, error) {
	if p.uploadErr != nil {
		return "", p.uploadErr
	}
	p.uploadData = data
	p.lastSession = sess.SessionToken
	return p.uploadURL, nil
}

func (p *fakeProvider) CreateTask(ctx context.Context, sess *nanabanana.Session, prompt string, imageURLs []string) (string, error) {
	p.createCalls++
	if p.createErr != nil {
		return "", p.createErr
	}
	p.lastPrompt = prompt
	p.lastImageURLs = imageURLs
	p.lastSession = sess.SessionToken
	if p.createRemoteID != "" {
		return p.createRemoteID, nil
	}
	return fmt.Sprintf("remote-%d", p.createCalls), nil
}

func (p *fakeProvider) TaskStatus(ctx context.Context, sess *nanabanana.Session, taskID string) (nanabanana.TaskState, error) {
	p.statusCalls++
	if p.statusErr != nil {
		return nanabanana.TaskState{}, p.statusErr
	}
	return p.state, nil
}

func (p *fakeProvider) Download(ctx context.Context, url string) ([]byte, error) {
	if p.downloadErr != nil {
		return nil, p.downloadErr
	}
	return p.downloadData, nil
}

// fakeBlobStore is an in-memory blob.Store.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(ctx context.Context, key string, data []byte, mimeType string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "http://blobs.test/" + key, nil
}

func (s *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return data, nil
}

// fakeProvisioner is a scriptable service.CredentialProvisioner.
type fakeProvisioner struct {
	creds *provision.Credentials
	err   error
	calls int
}

func (p *fakeProvisioner) Provision(ctx context.Context) (*provision.Credentials, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.creds, nil
}
