package storage

import "sync"

type ChangeKind string

const (
	ChangeRecordCreated ChangeKind = "record.created"
	ChangeRecordUpdated ChangeKind = "record.updated"
	ChangeRecordDeleted ChangeKind = "record.deleted"
)

// Change describes one mutation of an owner's record set. Payloads carry ids
// only; subscribers re-read the snapshot they care about.
type Change struct {
	OwnerID  string
	Kind     ChangeKind
	RecordID string
}

// ChangeFeed is an in-process fan-out of storage mutations. It backs the
// summary cache invalidation and the export publisher without either of them
// reaching into the repository.
type ChangeFeed struct {
	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
	closed bool
}

func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{subs: make(map[int]chan Change)}
}

// Subscribe returns a buffered channel of changes and a cancel func. A slow
// subscriber drops changes rather than blocking writers; droppers still see
// a later change for the same owner and re-fold then.
func (f *ChangeFeed) Subscribe() (<-chan Change, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Change, 64)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (f *ChangeFeed) Publish(c Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for _, ch := range f.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

func (f *ChangeFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
