package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/drawparty/config"
	"github.com/wfunc/drawparty/models"
	"github.com/wfunc/drawparty/topic"
)

var _ TopicStore = (*GormTopicStore)(nil)

func TestDSN(t *testing.T) {
	dsn := DSN(config.PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "drawparty"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=drawparty sslmode=disable", dsn)
}

func TestCatalogFromRows(t *testing.T) {
	rows := []models.GormTopic{
		models.NewGormTopic(topic.Entry{Main: "猫", Aliases: []string{"ネコ", "cat"}}),
		{Main: "犬"},
	}

	catalog, err := CatalogFromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, []topic.Entry{
		{Main: "猫", Aliases: []string{"ネコ", "cat"}},
		{Main: "犬"},
	}, catalog.Entries())
}

func TestCatalogFromRows_Errors(t *testing.T) {
	_, err := CatalogFromRows(nil)
	assert.ErrorIs(t, err, ErrNoTopics)

	_, err = CatalogFromRows([]models.GormTopic{{Main: "  "}})
	assert.ErrorIs(t, err, topic.ErrBlankMain)
}

func TestGormTopic_CopiesAliases(t *testing.T) {
	aliases := []string{"ネコ"}
	row := models.NewGormTopic(topic.Entry{Main: "猫", Aliases: aliases})
	aliases[0] = "changed"

	assert.Equal(t, []string{"ネコ"}, row.Entry().Aliases)
	assert.True(t, row.Enabled)
	assert.Equal(t, "topics", row.TableName())
}
