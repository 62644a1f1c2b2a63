package models

import (
	"strings"
	"time"
)

// Tag is a label attachable to contacts and tickets. Names starting with
// "#" are permission tags: a single "#" marks a personal tag (an agent's
// own book of contacts), "##" or "###" mark complementary tags (an
// additional qualifier that must also match). The role is derived purely
// from the name prefix; CategorizeTagsByName is the only place that reads
// the grammar.
type Tag struct {
	ID         uint      `json:"id" db:"id"`
	TenantID   uint      `json:"tenant_id" db:"tenant_id"`
	Name       string    `json:"name" db:"name"`
	Color      string    `json:"color" db:"color"`
	Kanban     int       `json:"kanban" db:"kanban"`
	CreateTime time.Time `json:"create_time" db:"create_time"`
	ChangeTime time.Time `json:"change_time" db:"change_time"`
}

// TagCategories partitions permission tags by role.
type TagCategories struct {
	Personal      []Tag
	Complementary []Tag
}

// CategorizeTagsByName splits the permission tags out of a tag list by the
// name-prefix convention. Tags without a "#" prefix carry no permission
// semantics and are ignored.
func CategorizeTagsByName(tags []Tag) TagCategories {
	var cats TagCategories
	for _, tag := range tags {
		if !strings.HasPrefix(tag.Name, "#") {
			continue
		}
		if strings.HasPrefix(tag.Name, "##") {
			cats.Complementary = append(cats.Complementary, tag)
			continue
		}
		cats.Personal = append(cats.Personal, tag)
	}
	return cats
}
