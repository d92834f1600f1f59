package s3

import (
	"io"
	"io/ioutil"
	"sort"
	"strings"
	"sync"
)

// MockBasicClient is an in-memory BasicClient used by tests across packages.
type MockBasicClient struct {
	mu      sync.Mutex
	objects map[string][]byte
	// GetErr and PutErr, when set, are returned by the respective calls so
	// tests can simulate storage failures.
	GetErr error
	PutErr error
}

func NewMockBasicClient() *MockBasicClient {
	return &MockBasicClient{objects: make(map[string][]byte)}
}

func (m *MockBasicClient) List(key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0)
	for k := range m.objects {
		if strings.HasPrefix(k, key) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockBasicClient) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return data, nil
}

func (m *MockBasicClient) Put(key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = cp
	return nil
}

func (m *MockBasicClient) BufferPut(key string, buf io.ReadSeeker, contentType string) error {
	if _, err := buf.Seek(0, io.SeekStart); err != nil {
		return err
	}
	data, err := ioutil.ReadAll(buf)
	if err != nil {
		return err
	}
	return m.Put(key, data, contentType)
}

func (m *MockBasicClient) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// NumObjects returns the count of stored objects.
func (m *MockBasicClient) NumObjects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ BasicClient = &MockBasicClient{}
