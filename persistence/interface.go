// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/drawparty/topic"
)

// TopicStore 题库存储接口，房间状态从不落库
type TopicStore interface {
	LoadCatalog() (*topic.Catalog, error)
	SeedTopics(entries []topic.Entry) (int, error)
	Close() error
}

// 错误定义
var (
	ErrNoTopics = errors.New("no enabled topics")
)
