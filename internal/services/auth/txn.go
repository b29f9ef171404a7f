package auth

import "sync"

// Txn is the short-lived state bridging the redirect-out and callback-in
// halves of the OAuth flow, keyed by the request token
type Txn struct {
	RequestToken       string
	RequestTokenSecret string
}

// TxnStore holds pending transactions in memory. Entries are single-use:
// Take removes on read so a replayed callback cannot reuse one. Abandoned
// flows leak an entry, which is acceptable for a single-user local tool
type TxnStore struct {
	mu   sync.Mutex
	txns map[string]Txn
}

// NewTxnStore creates an empty TxnStore
func NewTxnStore() *TxnStore {
	return &TxnStore{txns: make(map[string]Txn)}
}

// Put registers a pending transaction under its request token
func (s *TxnStore) Put(t Txn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns[t.RequestToken] = t
}

// Take removes and returns the transaction for token, if present
func (s *TxnStore) Take(token string) (Txn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[token]
	if ok {
		delete(s.txns, token)
	}
	return t, ok
}

// Len reports the number of pending transactions
func (s *TxnStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txns)
}
