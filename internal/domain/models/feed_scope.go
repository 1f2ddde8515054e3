package model

import "fmt"

type ScopeKind string

const (
	ScopeAll     ScopeKind = "all"
	ScopeGroup   ScopeKind = "group"
	ScopeAuthor  ScopeKind = "author"
	ScopeFollows ScopeKind = "follows"
)

// FeedScope selects the posts of a feed. Only the id matching Kind is used.
type FeedScope struct {
	Kind       ScopeKind
	GroupID    int64
	AuthorID   int64
	FollowerID int64
}

func AllPosts() FeedScope {
	return FeedScope{Kind: ScopeAll}
}

func GroupPosts(groupID int64) FeedScope {
	return FeedScope{Kind: ScopeGroup, GroupID: groupID}
}

func AuthorPosts(authorID int64) FeedScope {
	return FeedScope{Kind: ScopeAuthor, AuthorID: authorID}
}

func FollowedPosts(followerID int64) FeedScope {
	return FeedScope{Kind: ScopeFollows, FollowerID: followerID}
}

func (s FeedScope) IsValid() error {
	switch s.Kind {
	case ScopeAll:
		return nil
	case ScopeGroup:
		if s.GroupID > 0 {
			return nil
		}
	case ScopeAuthor:
		if s.AuthorID > 0 {
			return nil
		}
	case ScopeFollows:
		if s.FollowerID > 0 {
			return nil
		}
	}
	return fmt.Errorf("invalid feed scope: %s", s.Kind)
}
