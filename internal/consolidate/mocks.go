package consolidate

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/real-comp/mvr-common/internal/entities"
)

type MockDocumentSink struct {
	mock.Mock
}

var _ DocumentSink = (*MockDocumentSink)(nil)

func (m *MockDocumentSink) WriteDocuments(ctx context.Context, docs []*entities.Document) error {
	args := m.Called(ctx, docs)
	return args.Error(0)
}
