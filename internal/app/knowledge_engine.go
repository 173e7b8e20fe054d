package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/gorm"

	"docbrain/internal/ai"
	"docbrain/internal/model"
	"docbrain/internal/pkg/logger"
	"docbrain/internal/pkg/pdfextract"
	"docbrain/internal/pkg/textsplit"
	"docbrain/internal/platform/sqlite"
	"docbrain/internal/repository"
)

const storeFileName = "knowledge.db"

// User-facing engine messages, in the assistant's target language.
const (
	msgStoreUninitialized = "Error: Base de datos no inicializada."
	msgStoreCleared       = "Memoria eliminada por completo."
	msgStoreAlreadyEmpty  = "La base de datos ya estaba vacía."
)

// LoadPagesFunc extracts per-page text from a PDF on local storage.
type LoadPagesFunc func(path string) ([]pdfextract.Page, error)

type EngineConfig struct {
	StoreDir        string
	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	MinScore        float64
	ReplaceExisting bool
}

// KnowledgeEngine is the sole owner of the vector store handle. The store
// initializes lazily: absent until the first successful ingest, reopened from
// disk on later runs. Every boundary operation converts faults into Result
// messages so the calling surface always has something displayable.
type KnowledgeEngine struct {
	cfg       EngineConfig
	loadPages LoadPagesFunc
	embedder  ai.Embedder
	chatter   ai.Chatter
	splitter  *textsplit.Splitter

	mu     sync.Mutex
	db     *gorm.DB
	chunks *repository.ChunkRepository
}

// NewKnowledgeEngine builds the engine and reopens a persisted store if one
// exists under cfg.StoreDir. A nil loadPages falls back to the PDF extractor.
func NewKnowledgeEngine(cfg EngineConfig, embedder ai.Embedder, chatter ai.Chatter, loadPages LoadPagesFunc) *KnowledgeEngine {
	if cfg.StoreDir == "" {
		cfg.StoreDir = "db"
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = textsplit.DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = textsplit.DefaultChunkOverlap
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if loadPages == nil {
		loadPages = pdfextract.ExtractPages
	}

	e := &KnowledgeEngine{
		cfg:       cfg,
		loadPages: loadPages,
		embedder:  embedder,
		chatter:   chatter,
		splitter:  textsplit.New(cfg.ChunkSize, cfg.ChunkOverlap),
	}

	if _, err := os.Stat(e.storePath()); err == nil {
		if openErr := e.openStore(); openErr != nil {
			logger.Error("reopen persisted store failed", openErr)
		} else {
			logger.Infow("persisted store reopened", "path", e.storePath())
		}
	}
	return e
}

func (e *KnowledgeEngine) storePath() string {
	return filepath.Join(e.cfg.StoreDir, storeFileName)
}

func (e *KnowledgeEngine) openStore() error {
	if err := os.MkdirAll(e.cfg.StoreDir, 0o755); err != nil {
		return fmt.Errorf("create store dir failed: %w", err)
	}
	db, err := sqlite.Open(e.storePath())
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(&model.Chunk{}); err != nil {
		return fmt.Errorf("migrate chunks table failed: %w", err)
	}
	e.db = db
	e.chunks = repository.NewChunkRepository(db)
	return nil
}

// Ingest loads the PDF at filePath, stamps every chunk with originalFilename
// as its source, embeds the chunks, and persists them. The store is created
// on first ingest. A failure never propagates as a fault: a multi-file batch
// continues past one bad file.
func (e *KnowledgeEngine) Ingest(ctx context.Context, filePath, originalFilename string) Result {
	pages, err := e.loadPages(filePath)
	if err != nil {
		return errResult(KindIngestFailure, "Error al procesar PDF: "+err.Error())
	}

	var items []model.Chunk
	seq := 0
	for _, page := range pages {
		for _, piece := range e.splitter.Split(page.Text) {
			items = append(items, model.Chunk{
				Source:  originalFilename,
				Page:    page.Number,
				Seq:     seq,
				Content: piece,
			})
			seq++
		}
	}
	if len(items) == 0 {
		return errResult(KindIngestFailure, "Error al procesar PDF: el documento no contiene texto extraíble")
	}

	for i := range items {
		vec, err := e.embedder.Embed(ctx, items[i].Content)
		if err != nil {
			return errResult(KindModelFailure, "Error al procesar PDF: "+err.Error())
		}
		items[i].SetEmbedding(vec)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		if err := e.openStore(); err != nil {
			return errResult(KindStoreFailure, "Error al procesar PDF: "+err.Error())
		}
	}
	if e.cfg.ReplaceExisting {
		if err := e.chunks.DeleteBySource(originalFilename); err != nil {
			return errResult(KindStoreFailure, "Error al procesar PDF: "+err.Error())
		}
	}
	if err := e.chunks.CreateBatch(items); err != nil {
		return errResult(KindStoreFailure, "Error al procesar PDF: "+err.Error())
	}

	logger.Infow("document ingested", "source", originalFilename, "chunks", len(items))
	return Result{
		OK:         true,
		Message:    fmt.Sprintf("Procesado correctamente: %d fragmentos de '%s'.", len(items), originalFilename),
		ChunkCount: len(items),
	}
}

// ListDocuments returns the distinct source filenames currently indexed.
// Fail-soft: an uninitialized store or a read failure yields an empty list.
func (e *KnowledgeEngine) ListDocuments() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return []string{}
	}
	sources, err := e.chunks.DistinctSources()
	if err != nil {
		logger.Error("list documents failed", err)
		return []string{}
	}
	return sources
}

// Delete removes every chunk whose source equals filename.
func (e *KnowledgeEngine) Delete(filename string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return errResult(KindStoreUninitialized, msgStoreUninitialized)
	}

	count, err := e.chunks.CountBySource(filename)
	if err != nil {
		return errResult(KindStoreFailure, "Error al eliminar el archivo: "+err.Error())
	}
	if count == 0 {
		return okResult(fmt.Sprintf("No había fragmentos de '%s' en la memoria.", filename))
	}
	if err := e.chunks.DeleteBySource(filename); err != nil {
		return errResult(KindStoreFailure, "Error al eliminar el archivo: "+err.Error())
	}

	logger.Infow("document deleted", "source", filename, "chunks", count)
	return okResult(fmt.Sprintf("Archivo '%s' eliminado de la memoria.", filename))
}

// ClearAll destroys the persisted store directory and resets the handle to
// uninitialized. Administrative operation.
func (e *KnowledgeEngine) ClearAll() Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		if _, err := os.Stat(e.cfg.StoreDir); os.IsNotExist(err) {
			return okResult(msgStoreAlreadyEmpty)
		}
	}

	if e.db != nil {
		if err := sqlite.Close(e.db); err != nil {
			logger.Error("close store before clear failed", err)
		}
		e.db = nil
		e.chunks = nil
	}
	if err := os.RemoveAll(e.cfg.StoreDir); err != nil {
		return errResult(KindClearFailure, "Error al borrar la base de datos: "+err.Error())
	}

	logger.Infof("store directory %s removed", e.cfg.StoreDir)
	return okResult(msgStoreCleared)
}

// AnswerPipeline returns a pipeline bound to the current store, or false when
// no documents have been ingested yet. Callers treat absence as "ask the user
// to upload documents first", not as an error.
func (e *KnowledgeEngine) AnswerPipeline() (*AnswerPipeline, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return nil, false
	}
	count, err := e.chunks.Count()
	if err != nil || count == 0 {
		return nil, false
	}
	return newAnswerPipeline(e.chunks, e.embedder, e.chatter, e.cfg.TopK, e.cfg.MinScore), true
}

// StoreReady reports whether a store handle is currently open.
func (e *KnowledgeEngine) StoreReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db != nil
}

// Close releases the store handle without touching persisted data.
func (e *KnowledgeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return nil
	}
	err := sqlite.Close(e.db)
	e.db = nil
	e.chunks = nil
	return err
}
