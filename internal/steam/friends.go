package steam

import "sync"

// FriendSet is the set of accounts in a mutual friend relationship with the service account.
// It is written only by the session event loop and read from anywhere.
type FriendSet struct {
	friends map[uint64]struct{}
	mu      sync.RWMutex
}

// NewFriendSet creates an empty friend set.
func NewFriendSet() *FriendSet {
	return &FriendSet{
		friends: make(map[uint64]struct{}),
	}
}

// Replace swaps the whole set after a full sync.
func (f *FriendSet) Replace(ids []uint64) {
	friends := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		friends[id] = struct{}{}
	}

	f.mu.Lock()
	f.friends = friends
	f.mu.Unlock()
}

// Set adds or removes a single account.
func (f *FriendSet) Set(id uint64, isFriend bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if isFriend {
		f.friends[id] = struct{}{}
	} else {
		delete(f.friends, id)
	}
}

// IsFriend reports whether the account is currently a friend.
func (f *FriendSet) IsFriend(id uint64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.friends[id]
	return ok
}

// Len returns the number of friends.
func (f *FriendSet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.friends)
}
