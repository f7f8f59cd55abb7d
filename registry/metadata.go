package registry

import "github.com/ruteri/dapp-registry-backend/interfaces"

// metadataStore is the per-dapp key/value namespace. It performs no access
// control of its own; the Registry evaluates the owner guard before
// delegating writes here. No lock either, the Registry's mutex covers it.
type metadataStore struct {
	values map[interfaces.DappID]map[string][]byte
}

func newMetadataStore() *metadataStore {
	return &metadataStore{values: make(map[interfaces.DappID]map[string][]byte)}
}

// get returns the value stored under key for id. A missing key (or a dapp
// with no metadata at all) yields an empty value, not an error; whether the
// dapp itself exists is the Registry's check.
func (m *metadataStore) get(id interfaces.DappID, key string) []byte {
	keys, ok := m.values[id]
	if !ok {
		return nil
	}

	value, ok := keys[key]
	if !ok {
		return nil
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out
}

// set stores a copy of value under key for id.
func (m *metadataStore) set(id interfaces.DappID, key string, value []byte) {
	keys, ok := m.values[id]
	if !ok {
		keys = make(map[string][]byte)
		m.values[id] = keys
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	keys[key] = stored
}

// clear destroys all metadata for id. A re-registration under the same id
// starts with an empty namespace.
func (m *metadataStore) clear(id interfaces.DappID) {
	delete(m.values, id)
}
