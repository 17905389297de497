package storage

import (
	"encoding/json"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matchcore/orderbook/internal/types"
)

// FileTradeStore implements TradeStore as an append-only audit log with
// size-based rotation. Read operations return empty (the log is write-only;
// use TieredTradeStore with InMemoryTradeStore for reads).
type FileTradeStore struct {
	writer  *lumberjack.Logger
	encoder *json.Encoder
	mutex   sync.Mutex
}

// NewFileTradeStore creates a rotating file-based trade store.
func NewFileTradeStore(filePath string, maxSizeMB, maxBackups int) (*FileTradeStore, error) {
	writer := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}

	return &FileTradeStore{
		writer:  writer,
		encoder: json.NewEncoder(writer),
	}, nil
}

func (s *FileTradeStore) Save(trade *types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.encoder.Encode(trade)
}

func (s *FileTradeStore) SaveBatch(trades []*types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, trade := range trades {
		if err := s.encoder.Encode(trade); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	// The file log is write-only.
	return []*types.Trade{}, nil
}

func (s *FileTradeStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.writer.Close()
}
