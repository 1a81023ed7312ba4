package mapper

import (
	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/model"
)

type NoteVersionMapper struct{}

func NewNoteVersionMapper() *NoteVersionMapper {
	return &NoteVersionMapper{}
}

func (m *NoteVersionMapper) ToEntity(v *model.NoteVersion) *entity.NoteVersion {
	if v == nil {
		return nil
	}

	return &entity.NoteVersion{
		Id:        v.Id,
		NoteId:    v.NoteId,
		Version:   v.Version,
		Content:   v.Content,
		EditorId:  v.EditorId,
		CreatedAt: v.CreatedAt,
	}
}

func (m *NoteVersionMapper) ToModel(v *entity.NoteVersion) *model.NoteVersion {
	if v == nil {
		return nil
	}

	return &model.NoteVersion{
		Id:        v.Id,
		NoteId:    v.NoteId,
		Version:   v.Version,
		Content:   v.Content,
		EditorId:  v.EditorId,
		CreatedAt: v.CreatedAt,
	}
}

func (m *NoteVersionMapper) ToEntities(versions []*model.NoteVersion) []*entity.NoteVersion {
	entities := make([]*entity.NoteVersion, len(versions))
	for i, v := range versions {
		entities[i] = m.ToEntity(v)
	}
	return entities
}

func (m *NoteVersionMapper) ToResponse(v *entity.NoteVersion) *dto.NoteVersionResponse {
	if v == nil {
		return nil
	}

	return &dto.NoteVersionResponse{
		Id:        v.Id,
		NoteId:    v.NoteId,
		Version:   v.Version,
		Content:   v.Content,
		EditorId:  v.EditorId,
		CreatedAt: v.CreatedAt,
	}
}

func (m *NoteVersionMapper) ToResponses(versions []*entity.NoteVersion) []*dto.NoteVersionResponse {
	res := make([]*dto.NoteVersionResponse, len(versions))
	for i, v := range versions {
		res[i] = m.ToResponse(v)
	}
	return res
}
