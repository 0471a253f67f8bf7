package objectstore

import (
	"context"
	"sync"
)

type memoryObject struct {
	contentType string
	body        []byte
}

// MemoryStore keeps objects in process. The *Err fields inject failures in tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]map[string]memoryObject

	UploadErr error
	RemoveErr error
	URLErr    error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: baseURL,
		objects: make(map[string]map[string]memoryObject),
	}
}

func (s *MemoryStore) Upload(ctx context.Context, bucket, path, contentType string, body []byte) error {
	if err := validateLocation(bucket, path); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UploadErr != nil {
		return s.UploadErr
	}
	b, ok := s.objects[bucket]
	if !ok {
		b = make(map[string]memoryObject)
		s.objects[bucket] = b
	}
	if _, exists := b[path]; exists {
		return &StorageError{Status: 409, Message: "The resource already exists"}
	}
	b[path] = memoryObject{contentType: contentType, body: append([]byte(nil), body...)}
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, bucket string, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	for _, p := range paths {
		delete(s.objects[bucket], p)
	}
	return nil
}

func (s *MemoryStore) PublicURL(bucket, path string) (string, error) {
	if err := validateLocation(bucket, path); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.URLErr != nil {
		return "", s.URLErr
	}
	return s.baseURL + "/storage/v1/object/public/" + bucket + "/" + path, nil
}

func (s *MemoryStore) Has(bucket, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.objects[bucket][path]
	return ok
}

func (s *MemoryStore) Count(bucket string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects[bucket])
}

func (s *MemoryStore) Put(bucket, path string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.objects[bucket] == nil {
		s.objects[bucket] = make(map[string]memoryObject)
	}
	s.objects[bucket][path] = memoryObject{body: body}
}
