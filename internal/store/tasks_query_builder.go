package store

import (
	"fmt"
	"strings"
	"time"

	"gamelife/internal/models"
)

// TaskFilter narrows ListTasks results. Zero values mean "no constraint".
type TaskFilter struct {
	UserID    int64
	Statuses  []models.TaskStatus
	Priority  models.TaskPriority
	Category  string
	DueBefore *time.Time
	Limit     int
	Offset    int
}

type listQueryBuilder struct {
	filter TaskFilter
	query  string
	args   []any
	where  []string
}

func buildListQuery(filter TaskFilter) (string, []any) {
	builder := &listQueryBuilder{filter: filter}
	builder.buildSelect()
	builder.buildWhere()
	builder.buildOrder()
	builder.buildPagination()
	return builder.query, builder.args
}

func (b *listQueryBuilder) buildSelect() {
	b.query = "SELECT " + taskColumns + " FROM tasks"
}

func (b *listQueryBuilder) buildWhere() {
	b.appendUser()
	b.appendStatuses()
	b.appendPriority()
	b.appendCategory()
	b.appendDueBefore()

	if len(b.where) == 0 {
		return
	}
	b.query += " WHERE " + strings.Join(b.where, " AND ")
}

func (b *listQueryBuilder) appendUser() {
	if b.filter.UserID == 0 {
		return
	}
	b.where = append(b.where, "user_id = ?")
	b.args = append(b.args, b.filter.UserID)
}

func (b *listQueryBuilder) appendStatuses() {
	if len(b.filter.Statuses) == 0 {
		return
	}
	b.where = append(b.where, fmt.Sprintf("status IN (%s)", placeholders(len(b.filter.Statuses))))
	for _, status := range b.filter.Statuses {
		b.args = append(b.args, string(status))
	}
}

func (b *listQueryBuilder) appendPriority() {
	if b.filter.Priority == "" {
		return
	}
	b.where = append(b.where, "priority = ?")
	b.args = append(b.args, string(b.filter.Priority))
}

func (b *listQueryBuilder) appendCategory() {
	if b.filter.Category == "" {
		return
	}
	b.where = append(b.where, "category = ?")
	b.args = append(b.args, b.filter.Category)
}

func (b *listQueryBuilder) appendDueBefore() {
	if b.filter.DueBefore == nil {
		return
	}
	b.where = append(b.where, "due_at < ?")
	b.args = append(b.args, formatTime(*b.filter.DueBefore))
}

func (b *listQueryBuilder) buildOrder() {
	b.query += " ORDER BY due_at ASC, id ASC"
}

func (b *listQueryBuilder) buildPagination() {
	hasLimit := false
	if b.filter.Limit > 0 {
		b.query += " LIMIT ?"
		b.args = append(b.args, b.filter.Limit)
		hasLimit = true
	}
	if b.filter.Offset > 0 {
		if !hasLimit {
			b.query += " LIMIT -1"
		}
		b.query += " OFFSET ?"
		b.args = append(b.args, b.filter.Offset)
	}
}
