package store

import (
	"context"

	"github.com/amishk599/jobwatch/internal/model"
)

// NopStore is used in check mode. It loads an empty history and never writes,
// so every matching posting appears new.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Load(_ context.Context) (*model.History, error) { return model.NewHistory(), nil }
func (s *NopStore) Save(_ context.Context, _ *model.History) error  { return nil }
func (s *NopStore) Close() error                                   { return nil }
