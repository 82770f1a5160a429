package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// PostStore is the local post storage used by publishers
type PostStore interface {
	PostExists(ctx context.Context, title string) (bool, error)
	EnsureCategory(ctx context.Context, name string) (int64, error)
	SavePost(ctx context.Context, post domain.Post, remoteID int64) (int64, error)
	SetPostImage(ctx context.Context, postID int64, path string) error
	SetTags(ctx context.Context, postID int64, tags []string) error
}

// RemotePublisher is an external publishing target, i.e. WordPress
type RemotePublisher interface {
	PostExists(ctx context.Context, title string) (bool, error)
	EnsureCategory(ctx context.Context, name string) (int64, error)
	CreatePost(ctx context.Context, post domain.Post) (int64, error)
	AttachImage(ctx context.Context, postID int64, image []byte, filename, alt string) error
	SetTags(ctx context.Context, postID int64, tags []string) error
}

// LocalPublisher publishes into the sqlite post store, images are written to imagesDir
type LocalPublisher struct {
	posts     PostStore
	imagesDir string
}

// NewLocalPublisher makes a local publisher
func NewLocalPublisher(posts PostStore, imagesDir string) *LocalPublisher {
	return &LocalPublisher{posts: posts, imagesDir: imagesDir}
}

// PostExists checks for a post with the same title
func (p *LocalPublisher) PostExists(ctx context.Context, title string) (bool, error) {
	return p.posts.PostExists(ctx, title)
}

// EnsureCategory returns local category id, creating it if absent
func (p *LocalPublisher) EnsureCategory(ctx context.Context, name string) (int64, error) {
	return p.posts.EnsureCategory(ctx, name)
}

// CreatePost stores the post and returns its id
func (p *LocalPublisher) CreatePost(ctx context.Context, post domain.Post) (int64, error) {
	return p.posts.SavePost(ctx, post, 0)
}

// AttachImage writes the image file and links it to the post. Alt text is not kept locally,
// the listing uses the post title.
func (p *LocalPublisher) AttachImage(ctx context.Context, postID int64, image []byte, filename, _ string) error {
	if err := os.MkdirAll(p.imagesDir, 0o750); err != nil {
		return fmt.Errorf("create images dir: %w", err)
	}
	// post id prefix keeps files of posts with the same slug apart
	path := filepath.Join(p.imagesDir, fmt.Sprintf("%d-%s", postID, filepath.Base(filename)))
	if err := os.WriteFile(path, image, 0o600); err != nil {
		return fmt.Errorf("write image %s: %w", path, err)
	}
	return p.posts.SetPostImage(ctx, postID, path)
}

// SetTags replaces tags of the post
func (p *LocalPublisher) SetTags(ctx context.Context, postID int64, tags []string) error {
	return p.posts.SetTags(ctx, postID, tags)
}

// MirrorPublisher publishes to a remote target and records every published post in the
// local listing. Remote ids are returned to the caller, local failures are logged only.
type MirrorPublisher struct {
	remote RemotePublisher
	local  *LocalPublisher

	mu         sync.Mutex
	categories map[int64]int64 // remote category id -> local category id
	posts      map[int64]int64 // remote post id -> local post id
}

// NewMirrorPublisher makes a publisher writing to remote and mirroring into local
func NewMirrorPublisher(remote RemotePublisher, local *LocalPublisher) *MirrorPublisher {
	return &MirrorPublisher{remote: remote, local: local, categories: map[int64]int64{}, posts: map[int64]int64{}}
}

// PostExists checks the remote target, it is the source of truth
func (p *MirrorPublisher) PostExists(ctx context.Context, title string) (bool, error) {
	return p.remote.PostExists(ctx, title)
}

// EnsureCategory makes sure category exists on both sides and returns the remote id
func (p *MirrorPublisher) EnsureCategory(ctx context.Context, name string) (int64, error) {
	remoteID, err := p.remote.EnsureCategory(ctx, name)
	if err != nil {
		return 0, err
	}
	localID, err := p.local.EnsureCategory(ctx, name)
	if err != nil {
		lgr.Printf("[WARN] can't mirror category %q: %v", name, err)
		return remoteID, nil
	}
	p.mu.Lock()
	p.categories[remoteID] = localID
	p.mu.Unlock()
	return remoteID, nil
}

// CreatePost creates the remote post and its local copy
func (p *MirrorPublisher) CreatePost(ctx context.Context, post domain.Post) (int64, error) {
	remoteID, err := p.remote.CreatePost(ctx, post)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	post.CategoryID = p.categories[post.CategoryID]
	p.mu.Unlock()

	localID, err := p.local.posts.SavePost(ctx, post, remoteID)
	if err != nil {
		lgr.Printf("[WARN] can't mirror post %d %q: %v", remoteID, post.Title, err)
		return remoteID, nil
	}
	p.mu.Lock()
	p.posts[remoteID] = localID
	p.mu.Unlock()
	return remoteID, nil
}

// AttachImage uploads the image to the remote post and stores a local copy
func (p *MirrorPublisher) AttachImage(ctx context.Context, postID int64, image []byte, filename, alt string) error {
	if err := p.remote.AttachImage(ctx, postID, image, filename, alt); err != nil {
		return err
	}
	if localID, ok := p.localID(postID); ok {
		if err := p.local.AttachImage(ctx, localID, image, filename, alt); err != nil {
			lgr.Printf("[WARN] can't mirror image of post %d: %v", postID, err)
		}
	}
	return nil
}

// SetTags sets tags on the remote post and its local copy
func (p *MirrorPublisher) SetTags(ctx context.Context, postID int64, tags []string) error {
	if err := p.remote.SetTags(ctx, postID, tags); err != nil {
		return err
	}
	if localID, ok := p.localID(postID); ok {
		if err := p.local.SetTags(ctx, localID, tags); err != nil {
			lgr.Printf("[WARN] can't mirror tags of post %d: %v", postID, err)
		}
	}
	return nil
}

func (p *MirrorPublisher) localID(remoteID int64) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.posts[remoteID]
	return id, ok
}
