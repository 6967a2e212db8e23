package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFromJSONTolerantShapes 逐字段容错解码各种不可靠形状
func TestFromJSONTolerantShapes(t *testing.T) {
	t.Run("标题为纯字符串", func(t *testing.T) {
		doc, err := FromJSON([]byte(`{"title": "A Plain Title"}`))
		require.NoError(t, err)
		assert.Equal(t, "A Plain Title", doc.Title.Text)
	})

	t.Run("标题为带样式对象", func(t *testing.T) {
		doc, err := FromJSON([]byte(`{"title": {"text": "Styled Title", "style": "bold"}}`))
		require.NoError(t, err)
		assert.Equal(t, "Styled Title", doc.Title.Text)
		assert.Equal(t, "bold", doc.Title.Style)
	})

	t.Run("作者对象数组附加上标与星号", func(t *testing.T) {
		doc, err := FromJSON([]byte(`{"authors": [
			{"name": "John Smith", "affiliation": "University of Lagos", "corresponding": true},
			{"name": "Jane Doe", "affiliation": "University of Lagos"},
			{"name": "Ada Obi", "affiliation": "Makerere University"}
		]}`))
		require.NoError(t, err)
		assert.Equal(t, "John Smith<sup>1</sup>*, Jane Doe<sup>1</sup>, Ada Obi<sup>2</sup>", doc.Authors.Text)
		require.Len(t, doc.Affiliations, 2)
		assert.Equal(t, "University of Lagos", doc.Affiliations[0].Text)
		assert.Equal(t, 2, doc.Affiliations[1].Number)
	})

	t.Run("摘要内容为字符串数组", func(t *testing.T) {
		doc, err := FromJSON([]byte(`{"abstract": {"heading": "Abstract", "content": ["Part one.", "Part two."]}}`))
		require.NoError(t, err)
		assert.Equal(t, "Abstract", doc.Abstract.Heading)
		assert.Equal(t, "Part one., Part two.", doc.Abstract.Content)
	})

	t.Run("参考文献为字符串数组", func(t *testing.T) {
		doc, err := FromJSON([]byte(`{"references": ["Smith, J. (2020). First.", "Doe, J. (2021). Second."]}`))
		require.NoError(t, err)
		assert.Equal(t, "REFERENCES", doc.References.Heading)
		require.Len(t, doc.References.Entries, 2)
		assert.Equal(t, "Doe, J. (2021). Second.", doc.References.Entries[1].Text)
	})

	t.Run("参考文献为整段文本按行拆条", func(t *testing.T) {
		doc, err := FromJSON([]byte(`{"references": {"content": "Smith, J. (2020). A longer first entry.\nDoe, J. (2021). A longer second entry."}}`))
		require.NoError(t, err)
		require.Len(t, doc.References.Entries, 2)
	})

	t.Run("缺失的出版信息为空指针", func(t *testing.T) {
		doc, err := FromJSON([]byte(`{"publicationInfo": {"doi": "", "received": ""}}`))
		require.NoError(t, err)
		assert.Nil(t, doc.PublicationInfo)
	})
}

// TestFromJSONInvalid 顶层不是 JSON 对象时报错
func TestFromJSONInvalid(t *testing.T) {
	_, err := FromJSON([]byte("not json at all"))
	assert.Error(t, err)
}
