package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"snaplink/internal/models"
)

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfileByEmail(ctx context.Context, email string) (models.Profile, string, error) {
	args := m.Called(ctx, email)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.String(1), args.Error(2)
}

func (m *ProfileRepositoryMock) CreateProfile(ctx context.Context, profile models.Profile, passwordHash string) (models.Profile, error) {
	args := m.Called(ctx, profile, passwordHash)
	var created models.Profile
	if val := args.Get(0); val != nil {
		created = val.(models.Profile)
	}
	return created, args.Error(1)
}

func (m *ProfileRepositoryMock) UpdateProfile(ctx context.Context, userID, username, avatarURL string) (models.Profile, error) {
	args := m.Called(ctx, userID, username, avatarURL)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) DeleteProfile(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) BulkProfiles(ctx context.Context, userIDs []string) ([]models.Profile, error) {
	args := m.Called(ctx, userIDs)
	var list []models.Profile
	if val := args.Get(0); val != nil {
		list = val.([]models.Profile)
	}
	return list, args.Error(1)
}

type ContactRepositoryMock struct {
	mock.Mock
}

func (m *ContactRepositoryMock) AddContact(ctx context.Context, userID, contactID string) (bool, error) {
	args := m.Called(ctx, userID, contactID)
	return args.Bool(0), args.Error(1)
}

func (m *ContactRepositoryMock) ListContacts(ctx context.Context, userID string) ([]models.Profile, error) {
	args := m.Called(ctx, userID)
	var list []models.Profile
	if val := args.Get(0); val != nil {
		list = val.([]models.Profile)
	}
	return list, args.Error(1)
}

func (m *ContactRepositoryMock) SearchProfiles(ctx context.Context, query, excludeUserID string, limit int) ([]models.Profile, error) {
	args := m.Called(ctx, query, excludeUserID, limit)
	var list []models.Profile
	if val := args.Get(0); val != nil {
		list = val.([]models.Profile)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, senderID, recipientID, content, imageURL string) (models.Message, error) {
	args := m.Called(ctx, senderID, recipientID, content, imageURL)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetConversation(ctx context.Context, userID, contactID string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, userID, contactID, limit)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, name, ownerID string) (models.Group, error) {
	args := m.Called(ctx, name, ownerID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) AddMembers(ctx context.Context, groupID string, userIDs []string) error {
	args := m.Called(ctx, groupID, userIDs)
	return args.Error(0)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	var list []models.Group
	if val := args.Get(0); val != nil {
		list = val.([]models.Group)
	}
	return list, args.Error(1)
}

func (m *GroupRepositoryMock) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	args := m.Called(ctx, groupID)
	var list []models.GroupMember
	if val := args.Get(0); val != nil {
		list = val.([]models.GroupMember)
	}
	return list, args.Error(1)
}

type GroupMessageRepositoryMock struct {
	mock.Mock
}

func (m *GroupMessageRepositoryMock) CreateGroupMessage(ctx context.Context, groupID, senderID, content, imageURL string) (models.GroupMessage, error) {
	args := m.Called(ctx, groupID, senderID, content, imageURL)
	var msg models.GroupMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GroupMessage)
	}
	return msg, args.Error(1)
}

func (m *GroupMessageRepositoryMock) ListGroupMessages(ctx context.Context, groupID string, limit int) ([]models.GroupMessage, error) {
	args := m.Called(ctx, groupID, limit)
	var list []models.GroupMessage
	if val := args.Get(0); val != nil {
		list = val.([]models.GroupMessage)
	}
	return list, args.Error(1)
}

type StoryRepositoryMock struct {
	mock.Mock
}

func (m *StoryRepositoryMock) CreateStory(ctx context.Context, story models.Story) (models.Story, error) {
	args := m.Called(ctx, story)
	var created models.Story
	if val := args.Get(0); val != nil {
		created = val.(models.Story)
	}
	return created, args.Error(1)
}

func (m *StoryRepositoryMock) ListRecentStories(ctx context.Context, since time.Time, limit int) ([]models.Story, error) {
	args := m.Called(ctx, since, limit)
	var list []models.Story
	if val := args.Get(0); val != nil {
		list = val.([]models.Story)
	}
	return list, args.Error(1)
}

type ObjectStorageMock struct {
	mock.Mock
}

func (m *ObjectStorageMock) Upload(ctx context.Context, pathPrefix string, data io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, pathPrefix, data, size, contentType)
	return args.String(0), args.Error(1)
}

type LocatorMock struct {
	mock.Mock
}

func (m *LocatorMock) IndexStory(ctx context.Context, story models.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *LocatorMock) NearbyStories(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]models.Story, error) {
	args := m.Called(ctx, lat, lon, radiusKm, limit)
	var list []models.Story
	if val := args.Get(0); val != nil {
		list = val.([]models.Story)
	}
	return list, args.Error(1)
}
