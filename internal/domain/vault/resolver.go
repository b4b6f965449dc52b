package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/credential"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/manifest"
)

const DefaultConcurrency = 4

// ContentStore is the content-addressed blob store the resolver writes to.
type ContentStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// Cipher encrypts manifests of legacy vaults.
type Cipher interface {
	Encrypt(content any, password string) (string, error)
	Decrypt(blob, password string, out any) error
}

// legacyEnvelope is the JSON document an encrypted manifest is pinned as.
type legacyEnvelope struct {
	EncryptedVault string `json:"encryptedVault"`
}

// Resolver turns messages and files into a stored manifest and back.
// It keeps no state between calls.
type Resolver struct {
	store       ContentStore
	cipher      Cipher
	hasher      credential.Hasher
	concurrency int
	log         *slog.Logger
}

func NewResolver(store ContentStore, cipher Cipher, hasher credential.Hasher, concurrency int, log *slog.Logger) *Resolver {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Resolver{
		store:       store,
		cipher:      cipher,
		hasher:      hasher,
		concurrency: concurrency,
		log:         log.With("component", "vault_resolver"),
	}
}

// Create uploads files, then the manifest, and returns the manifest id.
// credentialHash is empty for legacy_encrypted vaults.
func (r *Resolver) Create(ctx context.Context, message string, files []FileInput, password string, scheme Scheme) (contentID, credentialHash string, err error) {
	if password == "" {
		return "", "", errs.Invalid("password", "password is required")
	}
	if !scheme.Valid() {
		return "", "", errs.Invalid("scheme", "unknown vault scheme")
	}

	if scheme == SchemeHashGated {
		credentialHash, err = r.hasher.Hash(password)
		if err != nil {
			return "", "", fmt.Errorf("hash vault password: %w", err)
		}
	}

	refs, err := r.uploadFiles(ctx, files)
	if err != nil {
		return "", "", err
	}

	contentID, err = r.putManifest(ctx, manifest.New(message, refs), password, scheme)
	if err != nil {
		return "", "", err
	}

	r.log.Debug("vault content stored", "cid", contentID, "files", len(refs), "scheme", scheme)

	return contentID, credentialHash, nil
}

// Unlock checks password against v and returns its message and files.
func (r *Resolver) Unlock(ctx context.Context, v Vault, password string) (Content, error) {
	m, err := r.openManifest(ctx, v, password, true)
	if err != nil {
		return Content{}, err
	}
	return r.resolve(ctx, m)
}

// Release returns the content of a hash-gated vault without a password.
// Legacy vaults cannot be read without their password.
func (r *Resolver) Release(ctx context.Context, v Vault, password string) (Content, error) {
	m, err := r.openManifest(ctx, v, password, v.Scheme != SchemeHashGated)
	if err != nil {
		return Content{}, err
	}
	return r.resolve(ctx, m)
}

// Edit writes a new manifest for v. A nil message keeps the old one; no files
// keeps the old file list. The previous manifest is left in place.
func (r *Resolver) Edit(ctx context.Context, v Vault, message *string, files []FileInput, password string) (string, error) {
	prev, err := r.openManifest(ctx, v, password, true)
	if err != nil {
		return "", err
	}

	text := prev.Text()
	if message != nil {
		text = *message
	}

	refs := prev.Files
	if len(files) > 0 {
		refs, err = r.uploadFiles(ctx, files)
		if err != nil {
			return "", err
		}
	}

	contentID, err := r.putManifest(ctx, manifest.New(text, refs), password, v.Scheme)
	if err != nil {
		return "", err
	}

	r.log.Debug("vault content replaced", "vault_id", v.ID, "old_cid", v.ContentID, "cid", contentID)

	return contentID, nil
}

// FileIDs lists the file ids of a hash-gated vault. For legacy vaults it
// returns nothing since the manifest cannot be read without the password.
func (r *Resolver) FileIDs(ctx context.Context, v Vault) ([]string, error) {
	if v.Scheme != SchemeHashGated {
		return nil, nil
	}

	m, err := r.openManifest(ctx, v, "", false)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(m.Files))
	for i, f := range m.Files {
		ids[i] = f.CID
	}
	return ids, nil
}

func (r *Resolver) openManifest(ctx context.Context, v Vault, password string, verify bool) (manifest.Manifest, error) {
	if !v.Scheme.Valid() {
		return manifest.Manifest{}, fmt.Errorf("open vault %s: unknown scheme %q: %w", v.ID, v.Scheme, errs.ErrCorruptManifest)
	}

	if verify && v.Scheme == SchemeHashGated {
		if err := r.hasher.Compare(v.CredentialHash, password); err != nil {
			return manifest.Manifest{}, errs.ErrInvalidPassword
		}
	}

	data, err := r.store.Get(ctx, v.ContentID)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("fetch manifest: %w", err)
	}

	if v.Scheme == SchemeHashGated {
		return manifest.Decode(data)
	}

	if password == "" {
		return manifest.Manifest{}, errs.ErrInvalidPassword
	}

	blob, err := extractBlob(data)
	if err != nil {
		return manifest.Manifest{}, err
	}

	var plain json.RawMessage
	if err := r.cipher.Decrypt(blob, password, &plain); err != nil {
		r.log.Debug("legacy manifest did not decrypt", "vault_id", v.ID, "error", err)
		return manifest.Manifest{}, errs.ErrInvalidPassword
	}

	return manifest.Decode(plain)
}

// extractBlob accepts {"encryptedVault": "..."}, a JSON string, or the bare
// blob text.
func extractBlob(data []byte) (string, error) {
	trimmed := strings.TrimSpace(string(data))

	var env legacyEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err == nil && env.EncryptedVault != "" {
		return env.EncryptedVault, nil
	}

	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err == nil && s != "" {
		return s, nil
	}

	if trimmed != "" && !strings.ContainsAny(trimmed, "{}[]\"") {
		return trimmed, nil
	}

	return "", fmt.Errorf("read encrypted manifest: %w", errs.ErrCorruptManifest)
}

func (r *Resolver) putManifest(ctx context.Context, m manifest.Manifest, password string, scheme Scheme) (string, error) {
	var (
		data []byte
		err  error
	)

	switch scheme {
	case SchemeLegacyEncrypted:
		payload, encErr := manifest.Encode(m)
		if encErr != nil {
			return "", encErr
		}
		blob, encErr := r.cipher.Encrypt(json.RawMessage(payload), password)
		if encErr != nil {
			return "", fmt.Errorf("encrypt manifest: %w", encErr)
		}
		data, err = json.Marshal(legacyEnvelope{EncryptedVault: blob})
	default:
		data, err = manifest.Encode(m)
	}
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}

	id, err := r.store.Put(ctx, "manifest.json", data)
	if err != nil {
		return "", fmt.Errorf("store manifest: %w", err)
	}
	return id, nil
}

func (r *Resolver) uploadFiles(ctx context.Context, files []FileInput) ([]manifest.FileRef, error) {
	if len(files) == 0 {
		return nil, nil
	}

	refs := make([]manifest.FileRef, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, f := range files {
		g.Go(func() error {
			id, err := r.store.Put(gctx, f.Name, f.Data)
			if err != nil {
				return fmt.Errorf("store file %q: %w", f.Name, err)
			}
			refs[i] = manifest.FileRef{CID: id, Name: f.Name, Type: f.Type}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Warn("file upload aborted", "files", len(files), "error", err)
		return nil, err
	}

	return refs, nil
}

func (r *Resolver) resolve(ctx context.Context, m manifest.Manifest) (Content, error) {
	out := Content{Message: m.Message}
	if len(m.Files) == 0 {
		return out, nil
	}

	out.Files = make([]File, len(m.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, ref := range m.Files {
		g.Go(func() error {
			data, err := r.store.Get(gctx, ref.CID)
			if err != nil {
				return fmt.Errorf("fetch file %q: %w", ref.Name, err)
			}
			out.Files[i] = File{CID: ref.CID, Name: ref.Name, Type: ref.Type, Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Content{}, err
	}

	return out, nil
}

// IsCredentialError reports whether err is a rejected secret.
func IsCredentialError(err error) bool {
	return errors.Is(err, errs.ErrInvalidPassword)
}
