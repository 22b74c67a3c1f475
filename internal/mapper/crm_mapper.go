package mapper

import (
	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/model"
)

type ContactMapper struct{}

func NewContactMapper() *ContactMapper { return &ContactMapper{} }

func (m *ContactMapper) ToEntity(c *model.Contact) *entity.Contact {
	if c == nil {
		return nil
	}
	return &entity.Contact{
		Id:        c.Id,
		UserId:    c.UserId,
		FullName:  c.FullName,
		Email:     c.Email,
		Phone:     c.Phone,
		Stage:     entity.ContactStage(c.Stage),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *ContactMapper) ToModel(c *entity.Contact) *model.Contact {
	if c == nil {
		return nil
	}
	return &model.Contact{
		Id:        c.Id,
		UserId:    c.UserId,
		FullName:  c.FullName,
		Email:     c.Email,
		Phone:     c.Phone,
		Stage:     string(c.Stage),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type DealMapper struct{}

func NewDealMapper() *DealMapper { return &DealMapper{} }

func (m *DealMapper) ToEntity(d *model.Deal) *entity.Deal {
	if d == nil {
		return nil
	}
	return &entity.Deal{
		Id:              d.Id,
		UserId:          d.UserId,
		ContactId:       d.ContactId,
		Title:           d.Title,
		PropertyAddress: d.PropertyAddress,
		Amount:          d.Amount,
		Stage:           entity.DealStage(d.Stage),
		ExpectedClose:   d.ExpectedClose,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (m *DealMapper) ToModel(d *entity.Deal) *model.Deal {
	if d == nil {
		return nil
	}
	return &model.Deal{
		Id:              d.Id,
		UserId:          d.UserId,
		ContactId:       d.ContactId,
		Title:           d.Title,
		PropertyAddress: d.PropertyAddress,
		Amount:          d.Amount,
		Stage:           string(d.Stage),
		ExpectedClose:   d.ExpectedClose,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper { return &NoteMapper{} }

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}
	return &entity.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		ContactId: n.ContactId,
		DealId:    n.DealId,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}
	return &model.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		ContactId: n.ContactId,
		DealId:    n.DealId,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type TaskMapper struct{}

func NewTaskMapper() *TaskMapper { return &TaskMapper{} }

func (m *TaskMapper) ToEntity(t *model.Task) *entity.Task {
	if t == nil {
		return nil
	}
	return &entity.Task{
		Id:        t.Id,
		UserId:    t.UserId,
		DealId:    t.DealId,
		Title:     t.Title,
		DueAt:     t.DueAt,
		Done:      t.Done,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *TaskMapper) ToModel(t *entity.Task) *model.Task {
	if t == nil {
		return nil
	}
	return &model.Task{
		Id:        t.Id,
		UserId:    t.UserId,
		DealId:    t.DealId,
		Title:     t.Title,
		DueAt:     t.DueAt,
		Done:      t.Done,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type CalendarEventMapper struct{}

func NewCalendarEventMapper() *CalendarEventMapper { return &CalendarEventMapper{} }

func (m *CalendarEventMapper) ToEntity(e *model.CalendarEvent) *entity.CalendarEvent {
	if e == nil {
		return nil
	}
	return &entity.CalendarEvent{
		Id:        e.Id,
		UserId:    e.UserId,
		ContactId: e.ContactId,
		Title:     e.Title,
		Location:  e.Location,
		StartsAt:  e.StartsAt,
		EndsAt:    e.EndsAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (m *CalendarEventMapper) ToModel(e *entity.CalendarEvent) *model.CalendarEvent {
	if e == nil {
		return nil
	}
	return &model.CalendarEvent{
		Id:        e.Id,
		UserId:    e.UserId,
		ContactId: e.ContactId,
		Title:     e.Title,
		Location:  e.Location,
		StartsAt:  e.StartsAt,
		EndsAt:    e.EndsAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
