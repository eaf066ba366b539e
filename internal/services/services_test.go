package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/database"
	applog "github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/metrics"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/recordstore"
	"github.com/conectahub/intranet-api/internal/repository"
	"github.com/conectahub/intranet-api/internal/session"
)

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

type serviceEnv struct {
	storage       *repository.Storage
	registry      *prometheus.Registry
	users         *UserService
	tasks         *TaskService
	notifications *NotificationService
	messages      *MessageService
	data          *DataService
	ranking       *RankingService
	clock         *testClock
}

func newServiceEnv(storage *repository.Storage, policy string) *serviceEnv {
	log := applog.Nop()
	registry := prometheus.NewRegistry()
	m := metrics.NewServiceMetrics(registry)
	clock := &testClock{current: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)}

	users := NewUserService(storage.Users, UserServiceConfig{
		BcryptCost:    bcrypt.MinCost,
		AdminEmail:    "admin@conectahub.com",
		AdminPassword: "admin123",
	}, log, m)
	notifications := NewNotificationService(storage, users, log, m)
	tasks := NewTaskService(storage, users, notifications, policy, log, m)
	messages := NewMessageService(storage.Messages, m)
	data := NewDataService(storage, log)

	users.now = clock.Now
	notifications.now = clock.Now
	tasks.now = clock.Now
	messages.now = clock.Now
	data.now = clock.Now

	return &serviceEnv{
		storage:       storage,
		registry:      registry,
		users:         users,
		tasks:         tasks,
		notifications: notifications,
		messages:      messages,
		data:          data,
		ranking:       NewRankingService(storage.Users),
		clock:         clock,
	}
}

func newLocalStorage(*testing.T) *repository.Storage {
	return repository.NewLocalStorage(recordstore.New(recordstore.NewMemoryKV()))
}

func newRemoteStorage(t *testing.T) *repository.Storage {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return repository.NewRemoteStorage(db)
}

// ServiceTestSuite exercises the services over one storage backend.
type ServiceTestSuite struct {
	suite.Suite
	newStorage func(t *testing.T) *repository.Storage
	env        *serviceEnv
	ctx        context.Context
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.env = newServiceEnv(suite.newStorage(suite.T()), CompleteByAnyone)
	suite.ctx = context.Background()
}

func (suite *ServiceTestSuite) createUser(fullName, email, department string) *models.User {
	user, err := suite.env.users.CreateUser(suite.ctx, CreateUserInput{
		FullName:        fullName,
		Email:           email,
		Password:        "123456",
		Department:      department,
		DepartmentValue: department,
	})
	suite.Require().NoError(err)
	return user
}

func (suite *ServiceTestSuite) createAdmin() *models.User {
	created, err := suite.env.users.EnsureDefaultAdmin(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().True(created)
	admin, err := suite.env.users.FindUser(suite.ctx, "admin@conectahub.com")
	suite.Require().NoError(err)
	return admin
}

func (suite *ServiceTestSuite) createTask(admin *models.User, title, department string, points int) *models.Task {
	task, err := suite.env.tasks.CreateTask(suite.ctx, CreateTaskInput{
		Title:           title,
		DepartmentValue: department,
		Points:          points,
	}, admin)
	suite.Require().NoError(err)
	return task
}

func (suite *ServiceTestSuite) TestCreateUser_ThenFindByEmail() {
	created := suite.createUser("João Pedro Silva", "joao@conectahub.com", "ti")

	found, err := suite.env.users.FindUser(suite.ctx, "joao@conectahub.com")
	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal(created.ID, found.ID)
	suite.Equal("joao@conectahub.com", found.Email)
	suite.Equal("João Pedro Silva", found.FullName)
	suite.Equal("ti", found.Department)
	suite.Equal("João", found.Name)
	suite.Equal(models.Stats{}, found.Stats)
	suite.Empty(found.Skills)
	suite.Empty(found.RecentActivities)
	suite.Empty(found.Notifications)
	suite.Equal(constants.DefaultRole, found.Role)
	suite.Equal(constants.DefaultPosition, found.Position)
	suite.False(found.IsAdmin)
	suite.NotEqual("123456", found.PasswordHash)
}

func (suite *ServiceTestSuite) TestCreateUser_DuplicateEmailIgnoresCase() {
	suite.createUser("Ana Souza", "ana@conectahub.com", "ti")

	_, err := suite.env.users.CreateUser(suite.ctx, CreateUserInput{FullName: "Outra Ana", Email: "ANA@ConectaHub.com"})
	suite.ErrorIs(err, ErrDuplicateEmail)
}

func (suite *ServiceTestSuite) TestCreateUser_EmailRequired() {
	_, err := suite.env.users.CreateUser(suite.ctx, CreateUserInput{FullName: "Sem Email", Email: "  "})
	suite.ErrorIs(err, ErrEmailRequired)
}

func (suite *ServiceTestSuite) TestFindUser_MissIsNotAnError() {
	found, err := suite.env.users.FindUser(suite.ctx, "ninguem")
	suite.NoError(err)
	suite.Nil(found)

	found, err = suite.env.users.FindUserBy(suite.ctx, "id", "missing")
	suite.NoError(err)
	suite.Nil(found)

	_, err = suite.env.users.FindUserBy(suite.ctx, "password", "x")
	suite.ErrorIs(err, ErrInvalidLookupField)
}

func (suite *ServiceTestSuite) TestValidateLogin() {
	created := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")

	_, err := suite.env.users.ValidateLogin(suite.ctx, "ninguem@conectahub.com", "123456")
	suite.ErrorIs(err, ErrUserNotFound)

	_, err = suite.env.users.ValidateLogin(suite.ctx, "ana@conectahub.com", "errada")
	suite.ErrorIs(err, ErrInvalidPassword)

	user, err := suite.env.users.ValidateLogin(suite.ctx, "Ana", "123456")
	suite.Require().NoError(err)
	suite.Equal(created.ID, user.ID)
	suite.True(user.LastLogin.After(created.LastLogin))
}

func (suite *ServiceTestSuite) TestUpdateUser() {
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	suite.createUser("Bia Lima", "bia@conectahub.com", "ti")

	_, err := suite.env.users.UpdateUser(suite.ctx, "missing", UpdateUserInput{})
	suite.ErrorIs(err, ErrUserNotFound)

	taken := "BIA@conectahub.com"
	_, err = suite.env.users.UpdateUser(suite.ctx, ana.ID, UpdateUserInput{UserPatch: models.UserPatch{Email: &taken}})
	suite.ErrorIs(err, ErrDuplicateEmail)

	phone := "(11) 99999-0000"
	password := "novasenha"
	updated, err := suite.env.users.UpdateUser(suite.ctx, ana.ID, UpdateUserInput{
		UserPatch: models.UserPatch{Phone: &phone},
		Password:  &password,
	})
	suite.Require().NoError(err)
	suite.Equal(phone, updated.Phone)
	suite.Equal("Ana Souza", updated.FullName)

	_, err = suite.env.users.ValidateLogin(suite.ctx, "ana@conectahub.com", "novasenha")
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestDeleteUser() {
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")

	suite.Require().NoError(suite.env.users.DeleteUser(suite.ctx, ana.ID))
	_, err := suite.env.users.GetUser(suite.ctx, ana.ID)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestEnsureDefaultAdmin_IsIdempotent() {
	admin := suite.createAdmin()
	suite.True(admin.IsAdmin)
	suite.Equal("Administrador", admin.FullName)
	suite.Equal("admin", admin.DepartmentValue)

	created, err := suite.env.users.EnsureDefaultAdmin(suite.ctx)
	suite.Require().NoError(err)
	suite.False(created)

	_, err = suite.env.users.ValidateLogin(suite.ctx, "admin@conectahub.com", "admin123")
	suite.NoError(err)

	users, err := suite.env.users.ListUsers(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(users, 1)
}

func (suite *ServiceTestSuite) TestSeedExamples() {
	n, err := suite.env.users.SeedExamples(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(2, n)

	n, err = suite.env.users.SeedExamples(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(0, n)

	maria, err := suite.env.users.FindUser(suite.ctx, "maria")
	suite.Require().NoError(err)
	suite.Equal("rh", maria.DepartmentValue)
}

func (suite *ServiceTestSuite) TestTaskScenario() {
	admin := suite.createAdmin()
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	bia := suite.createUser("Bia Lima", "bia@conectahub.com", "ti")
	caio := suite.createUser("Caio Reis", "caio@conectahub.com", "rh")

	task := suite.createTask(admin, "Write report", "ti", 20)
	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Nil(task.AssignedTo)
	suite.Equal("Administrador", task.CreatedByName)

	for _, id := range []string{ana.ID, bia.ID} {
		user, err := suite.env.users.GetUser(suite.ctx, id)
		suite.Require().NoError(err)
		suite.Require().Len(user.Notifications, 1)
		n := user.Notifications[0]
		suite.Equal(models.NotificationTypeNewTask, n.Type)
		suite.Equal("Nova tarefa disponível", n.Title)
		suite.Equal("Write report", n.Description)
		suite.Equal("fa-clipboard-list", n.Icon)
		suite.Equal(task.ID, *n.TaskID)
		suite.False(n.Read)
	}
	rh, err := suite.env.users.GetUser(suite.ctx, caio.ID)
	suite.Require().NoError(err)
	suite.Empty(rh.Notifications)

	assigned, err := suite.env.tasks.AssignTask(suite.ctx, task.ID, ana.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, assigned.Status)
	suite.NotNil(assigned.AssignedAt)

	completed, err := suite.env.tasks.CompleteTask(suite.ctx, nil, task.ID, ana.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, completed.Status)
	suite.NotNil(completed.CompletedAt)

	credited, err := suite.env.users.GetUser(suite.ctx, ana.ID)
	suite.Require().NoError(err)
	suite.Equal(1, credited.Stats.Tasks)
	suite.Equal(20, credited.Stats.Productivity)
	suite.Require().Len(credited.RecentActivities, 1)
	suite.Equal(`Completou a tarefa "Write report"`, credited.RecentActivities[0].Description)
	suite.Equal("fa-solid fa-clipboard-check", credited.RecentActivities[0].Icon)
}

func (suite *ServiceTestSuite) TestCreateTask_Validation() {
	admin := suite.createAdmin()
	member := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")

	_, err := suite.env.tasks.CreateTask(suite.ctx, CreateTaskInput{Title: "X", DepartmentValue: "ti"}, member)
	suite.ErrorIs(err, ErrPermissionDenied)

	_, err = suite.env.tasks.CreateTask(suite.ctx, CreateTaskInput{Title: "X", DepartmentValue: "ti"}, nil)
	suite.ErrorIs(err, ErrPermissionDenied)

	_, err = suite.env.tasks.CreateTask(suite.ctx, CreateTaskInput{DepartmentValue: "ti"}, admin)
	suite.ErrorIs(err, ErrTaskValidation)

	_, err = suite.env.tasks.CreateTask(suite.ctx, CreateTaskInput{Title: "X"}, admin)
	suite.ErrorIs(err, ErrTaskValidation)

	task := suite.createTask(admin, "Sem pontos", "ti", 0)
	suite.Equal(constants.DefaultTaskPoints, task.Points)
}

func (suite *ServiceTestSuite) TestAssignTask_OnlyOnce() {
	admin := suite.createAdmin()
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	bia := suite.createUser("Bia Lima", "bia@conectahub.com", "ti")
	task := suite.createTask(admin, "Inventário", "ti", 10)

	_, err := suite.env.tasks.AssignTask(suite.ctx, "missing", ana.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.env.tasks.AssignTask(suite.ctx, task.ID, ana.ID)
	suite.Require().NoError(err)

	for _, userID := range []string{bia.ID, ana.ID} {
		_, err = suite.env.tasks.AssignTask(suite.ctx, task.ID, userID)
		suite.ErrorIs(err, ErrTaskAlreadyAssigned)
	}

	stored, err := suite.env.tasks.GetTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal(ana.ID, *stored.AssignedTo)
}

func (suite *ServiceTestSuite) TestTasksByDepartmentAndUser() {
	admin := suite.createAdmin()
	joao := suite.createUser("João Silva", "joao@conectahub.com", "ti")
	report := suite.createTask(admin, "Write report", "ti", 20)
	suite.createTask(admin, "Review budget", "rh", 10)

	ti, err := suite.env.tasks.TasksByDepartment(suite.ctx, "ti")
	suite.Require().NoError(err)
	suite.Require().Len(ti, 1)
	suite.Equal(report.ID, ti[0].ID)

	mine, err := suite.env.tasks.UserTasks(suite.ctx, joao.ID)
	suite.Require().NoError(err)
	suite.Empty(mine)

	_, err = suite.env.tasks.AssignTask(suite.ctx, report.ID, joao.ID)
	suite.Require().NoError(err)
	mine, err = suite.env.tasks.UserTasks(suite.ctx, joao.ID)
	suite.Require().NoError(err)
	suite.Require().Len(mine, 1)
	suite.Equal(report.ID, mine[0].ID)
}

func (suite *ServiceTestSuite) TestCompleteTask_CapsRecentActivities() {
	admin := suite.createAdmin()
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")

	total := constants.MaxRecentActivities + 2
	for i := 0; i < total; i++ {
		task := suite.createTask(admin, fmt.Sprintf("Tarefa %d", i), "ti", 5)
		_, err := suite.env.tasks.AssignTask(suite.ctx, task.ID, ana.ID)
		suite.Require().NoError(err)
		_, err = suite.env.tasks.CompleteTask(suite.ctx, nil, task.ID, ana.ID)
		suite.Require().NoError(err)
	}

	user, err := suite.env.users.GetUser(suite.ctx, ana.ID)
	suite.Require().NoError(err)
	suite.Equal(total, user.Stats.Tasks)
	suite.Equal(total*5, user.Stats.Productivity)
	suite.Len(user.RecentActivities, constants.MaxRecentActivities)
	suite.Equal(fmt.Sprintf(`Completou a tarefa "Tarefa %d"`, total-1), user.RecentActivities[0].Description)
}

func (suite *ServiceTestSuite) TestCompleteTask_StatusIsForwardOnly() {
	admin := suite.createAdmin()
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	task := suite.createTask(admin, "Relatório", "ti", 10)

	_, err := suite.env.tasks.CompleteTask(suite.ctx, nil, "missing", ana.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.env.tasks.CompleteTask(suite.ctx, nil, task.ID, ana.ID)
	suite.ErrorIs(err, ErrTaskNotAssigned)

	_, err = suite.env.tasks.AssignTask(suite.ctx, task.ID, ana.ID)
	suite.Require().NoError(err)
	_, err = suite.env.tasks.CompleteTask(suite.ctx, nil, task.ID, ana.ID)
	suite.Require().NoError(err)

	_, err = suite.env.tasks.CompleteTask(suite.ctx, nil, task.ID, ana.ID)
	suite.ErrorIs(err, ErrTaskAlreadyCompleted)

	user, err := suite.env.users.GetUser(suite.ctx, ana.ID)
	suite.Require().NoError(err)
	suite.Equal(1, user.Stats.Tasks)
}

func (suite *ServiceTestSuite) TestCompleteTask_AnyoneMayCompleteByDefault() {
	admin := suite.createAdmin()
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	bia := suite.createUser("Bia Lima", "bia@conectahub.com", "ti")
	task := suite.createTask(admin, "Relatório", "ti", 10)

	_, err := suite.env.tasks.AssignTask(suite.ctx, task.ID, ana.ID)
	suite.Require().NoError(err)
	_, err = suite.env.tasks.CompleteTask(suite.ctx, nil, task.ID, bia.ID)
	suite.Require().NoError(err)

	credited, err := suite.env.users.GetUser(suite.ctx, ana.ID)
	suite.Require().NoError(err)
	suite.Equal(10, credited.Stats.Productivity)
}

func (suite *ServiceTestSuite) TestCompleteTask_RefreshesSessionOfAssignee() {
	admin := suite.createAdmin()
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	task := suite.createTask(admin, "Relatório", "ti", 15)
	_, err := suite.env.tasks.AssignTask(suite.ctx, task.ID, ana.ID)
	suite.Require().NoError(err)

	sess := session.NewMemoryStore()
	suite.Require().NoError(suite.env.users.Login(sess, *ana))

	_, err = suite.env.tasks.CompleteTask(suite.ctx, sess, task.ID, ana.ID)
	suite.Require().NoError(err)

	current, err := suite.env.users.CurrentUser(sess)
	suite.Require().NoError(err)
	suite.Equal(15, current.Stats.Productivity)
	suite.Len(current.RecentActivities, 1)
}

func (suite *ServiceTestSuite) TestConversations() {
	a, b, c := "user-a", "user-b", "user-c"

	m1, err := suite.env.messages.CreateMessage(suite.ctx, a, b, "oi")
	suite.Require().NoError(err)
	_, err = suite.env.messages.CreateMessage(suite.ctx, c, a, "bom dia")
	suite.Require().NoError(err)
	m2, err := suite.env.messages.CreateMessage(suite.ctx, b, a, "olá")
	suite.Require().NoError(err)
	suite.False(m2.Read)

	conversations, err := suite.env.messages.GetUserConversations(suite.ctx, a)
	suite.Require().NoError(err)
	suite.Require().Len(conversations, 2)

	suite.Equal(b, conversations[0].OtherUserID)
	suite.Require().Len(conversations[0].Messages, 2)
	suite.Equal(m1.ID, conversations[0].Messages[0].ID)
	suite.Equal(m2.ID, conversations[0].Messages[1].ID)
	suite.Equal(c, conversations[1].OtherUserID)

	forB, err := suite.env.messages.GetUserConversations(suite.ctx, b)
	suite.Require().NoError(err)
	suite.Require().Len(forB, 1)
	suite.Equal(a, forB[0].OtherUserID)
}

func (suite *ServiceTestSuite) TestMessages_MarkAsRead() {
	msg, err := suite.env.messages.CreateMessage(suite.ctx, "a", "b", "oi")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.env.messages.MarkAsRead(suite.ctx, msg.ID))
	suite.ErrorIs(suite.env.messages.MarkAsRead(suite.ctx, "missing"), ErrMessageNotFound)

	all, err := suite.env.messages.ListMessages(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(all, 1)
	suite.True(all[0].Read)

	_, err = suite.env.messages.CreateMessage(suite.ctx, "a", "b", "   ")
	suite.ErrorIs(err, ErrMessageInvalid)
}

func (suite *ServiceTestSuite) TestNotifyDepartment_CapsEachList() {
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	caio := suite.createUser("Caio Reis", "caio@conectahub.com", "rh")

	for i := 0; i < constants.MaxNotifications+5; i++ {
		n, err := suite.env.notifications.NotifyDepartment(suite.ctx, "ti", NotificationInput{
			Type:  "aviso",
			Title: fmt.Sprintf("Aviso %d", i),
		})
		suite.Require().NoError(err)
		suite.Equal(1, n)
	}

	user, err := suite.env.users.GetUser(suite.ctx, ana.ID)
	suite.Require().NoError(err)
	suite.Len(user.Notifications, constants.MaxNotifications)
	suite.Equal(fmt.Sprintf("Aviso %d", constants.MaxNotifications+4), user.Notifications[0].Title)
	suite.Equal(constants.DefaultNotifyIcon, user.Notifications[0].Icon)

	other, err := suite.env.users.GetUser(suite.ctx, caio.ID)
	suite.Require().NoError(err)
	suite.Empty(other.Notifications)
}

func (suite *ServiceTestSuite) TestNotifications_ReadStateAndSession() {
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	sess := session.NewMemoryStore()

	suite.ErrorIs(suite.env.notifications.MarkAllNotificationsAsRead(suite.ctx, sess), ErrNotLoggedIn)
	count, err := suite.env.notifications.GetUnreadCount(sess)
	suite.Require().NoError(err)
	suite.Zero(count)

	for i := 0; i < 3; i++ {
		_, err := suite.env.notifications.NotifyDepartment(suite.ctx, "ti", NotificationInput{Title: "Aviso"})
		suite.Require().NoError(err)
	}

	user, err := suite.env.users.ValidateLogin(suite.ctx, "ana@conectahub.com", "123456")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.env.users.Login(sess, *user))

	count, err = suite.env.notifications.GetUnreadCount(sess)
	suite.Require().NoError(err)
	suite.Equal(3, count)

	list, err := suite.env.notifications.ListNotifications(suite.ctx, sess)
	suite.Require().NoError(err)
	suite.Require().Len(list, 3)

	suite.Require().NoError(suite.env.notifications.MarkNotificationAsRead(suite.ctx, sess, list[0].ID))
	count, err = suite.env.notifications.GetUnreadCount(sess)
	suite.Require().NoError(err)
	suite.Equal(2, count)

	suite.ErrorIs(suite.env.notifications.MarkNotificationAsRead(suite.ctx, sess, "missing"), ErrNotificationNotFound)

	suite.Require().NoError(suite.env.notifications.MarkAllNotificationsAsRead(suite.ctx, sess))
	count, err = suite.env.notifications.GetUnreadCount(sess)
	suite.Require().NoError(err)
	suite.Zero(count)

	stored, err := suite.env.users.GetUser(suite.ctx, ana.ID)
	suite.Require().NoError(err)
	suite.Zero(stored.UnreadNotifications())
}

func (suite *ServiceTestSuite) TestMarkAllNotificationsAsRead_DeletedUser() {
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	sess := session.NewMemoryStore()
	suite.Require().NoError(suite.env.users.Login(sess, *ana))
	suite.Require().NoError(suite.env.users.DeleteUser(suite.ctx, ana.ID))

	suite.ErrorIs(suite.env.notifications.MarkAllNotificationsAsRead(suite.ctx, sess), ErrUserNotFound)
	_, err := suite.env.notifications.ListNotifications(suite.ctx, sess)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestUnreadCountReadsTheSnapshot() {
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	sess := session.NewMemoryStore()
	suite.Require().NoError(suite.env.users.Login(sess, *ana))

	_, err := suite.env.notifications.NotifyDepartment(suite.ctx, "ti", NotificationInput{Title: "Aviso"})
	suite.Require().NoError(err)

	count, err := suite.env.notifications.GetUnreadCount(sess)
	suite.Require().NoError(err)
	suite.Zero(count, "snapshot is stale until the next refresh")

	suite.Require().NoError(suite.env.users.RefreshSession(suite.ctx, sess, ana.ID))
	count, err = suite.env.notifications.GetUnreadCount(sess)
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *ServiceTestSuite) TestExportImportRoundTrip() {
	admin := suite.createAdmin()
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	task := suite.createTask(admin, "Relatório", "ti", 10)
	_, err := suite.env.tasks.AssignTask(suite.ctx, task.ID, ana.ID)
	suite.Require().NoError(err)
	_, err = suite.env.messages.CreateMessage(suite.ctx, admin.ID, ana.ID, "bem-vinda")
	suite.Require().NoError(err)

	exported, err := suite.env.data.Export(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(exported.Users, 2)
	suite.Len(exported.Tasks, 1)
	suite.Len(exported.Messages, 1)

	suite.Require().NoError(suite.env.data.ClearAll(suite.ctx, nil))
	empty, err := suite.env.data.Export(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(empty.Users)

	suite.Require().NoError(suite.env.data.Import(suite.ctx, *exported))

	reimported, err := suite.env.data.Export(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(ids(exported.Users), ids(reimported.Users))
	suite.Equal(exported.Users[1].Notifications[0].ID, reimported.Users[1].Notifications[0].ID)
	suite.Equal(exported.Tasks[0].ID, reimported.Tasks[0].ID)
	suite.Equal(ana.ID, *reimported.Tasks[0].AssignedTo)
	suite.Equal(exported.Messages[0].Content, reimported.Messages[0].Content)
}

func (suite *ServiceTestSuite) TestImport_AbsentCollectionsAreKept() {
	suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	_, err := suite.env.messages.CreateMessage(suite.ctx, "a", "b", "oi")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.env.data.Import(suite.ctx, Snapshot{Messages: []models.Message{}}))

	snapshot, err := suite.env.data.Export(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(snapshot.Users, 1)
	suite.Empty(snapshot.Messages)
}

func (suite *ServiceTestSuite) TestStatsAndClearAll() {
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	sess := session.NewMemoryStore()
	suite.Require().NoError(suite.env.users.Login(sess, *ana))

	stats, err := suite.env.data.Stats(suite.ctx, sess)
	suite.Require().NoError(err)
	suite.Equal(1, stats.TotalUsers)
	suite.Equal(1, stats.ActiveUser)
	suite.Equal(suite.env.storage.Mode, stats.Mode)

	suite.Require().NoError(suite.env.data.ClearAll(suite.ctx, sess))

	stats, err = suite.env.data.Stats(suite.ctx, sess)
	suite.Require().NoError(err)
	suite.Zero(stats.TotalUsers)
	suite.Zero(stats.ActiveUser)
}

func (suite *ServiceTestSuite) TestRanking() {
	ana := suite.createUser("Ana Souza", "ana@conectahub.com", "ti")
	bia := suite.createUser("Bia Lima", "bia@conectahub.com", "rh")
	caio := suite.createUser("Caio Reis", "caio@conectahub.com", "ti")

	setStats := func(id string, stats models.Stats) {
		_, err := suite.env.users.UpdateUser(suite.ctx, id, UpdateUserInput{UserPatch: models.UserPatch{Stats: &stats}})
		suite.Require().NoError(err)
	}
	setStats(ana.ID, models.Stats{Productivity: 10, Tasks: 1})
	setStats(bia.ID, models.Stats{Projects: 2})
	setStats(caio.ID, models.Stats{Productivity: 10, Tasks: 1})

	ranking, err := suite.env.ranking.Ranking(suite.ctx, "")
	suite.Require().NoError(err)
	suite.Require().Len(ranking, 3)
	suite.Equal(bia.ID, ranking[0].UserID)
	suite.Equal(100, ranking[0].XP)
	suite.Equal(ana.ID, ranking[1].UserID)
	suite.Equal(60, ranking[1].XP)
	suite.Equal(caio.ID, ranking[2].UserID)
	suite.Equal(3, ranking[2].Position)

	ti, err := suite.env.ranking.Ranking(suite.ctx, "ti")
	suite.Require().NoError(err)
	suite.Len(ti, 2)
}

func ids(users []models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestServicesLocal(t *testing.T) {
	suite.Run(t, &ServiceTestSuite{newStorage: newLocalStorage})
}

func TestServicesRemote(t *testing.T) {
	suite.Run(t, &ServiceTestSuite{newStorage: newRemoteStorage})
}

func TestCompleteTask_AssigneePolicy(t *testing.T) {
	env := newServiceEnv(newLocalStorage(t), CompleteByAssignee)
	ctx := context.Background()

	_, err := env.users.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	admin, err := env.users.FindUser(ctx, "admin@conectahub.com")
	require.NoError(t, err)
	ana, err := env.users.CreateUser(ctx, CreateUserInput{FullName: "Ana Souza", Email: "ana@conectahub.com", DepartmentValue: "ti"})
	require.NoError(t, err)

	task, err := env.tasks.CreateTask(ctx, CreateTaskInput{Title: "Relatório", DepartmentValue: "ti"}, admin)
	require.NoError(t, err)
	_, err = env.tasks.AssignTask(ctx, task.ID, ana.ID)
	require.NoError(t, err)

	_, err = env.tasks.CompleteTask(ctx, nil, task.ID, admin.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.tasks.CompleteTask(ctx, nil, task.ID, ana.ID)
	require.NoError(t, err)
}

type failingNotifications struct {
	repository.NotificationRepository
	attempts *int
}

func (f failingNotifications) Deliver(context.Context, []repository.Delivery) (int, error) {
	*f.attempts++
	return 0, errors.New("notifications table unavailable")
}

func TestCreateTask_FanoutFailureIsNotFatal(t *testing.T) {
	storage := newLocalStorage(t)
	broken := *storage
	attempts := 0
	broken.Notifications = failingNotifications{NotificationRepository: storage.Notifications, attempts: &attempts}
	env := newServiceEnv(&broken, CompleteByAnyone)
	ctx := context.Background()

	_, err := env.users.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	admin, err := env.users.FindUser(ctx, "admin@conectahub.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	_, err = env.users.CreateUser(ctx, CreateUserInput{FullName: "Ana Souza", Email: "ana@conectahub.com", DepartmentValue: "ti"})
	require.NoError(t, err)

	task, err := env.tasks.CreateTask(ctx, CreateTaskInput{Title: "Relatório", DepartmentValue: "ti"}, admin)
	require.NoError(t, err)
	require.Equal(t, 1, attempts)

	stored, err := env.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "Relatório", stored.Title)
}

func TestServiceMetrics_CountOutcomes(t *testing.T) {
	env := newServiceEnv(newLocalStorage(t), CompleteByAnyone)
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, CreateUserInput{FullName: "Ana Souza", Email: "ana@conectahub.com"})
	require.NoError(t, err)
	_, err = env.users.CreateUser(ctx, CreateUserInput{FullName: "Ana Souza", Email: "ana@conectahub.com"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	families, err := env.registry.Gather()
	require.NoError(t, err)

	outcomes := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "conectahub_operations_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["operation"] == "create_user" {
				outcomes[labels["outcome"]] = metric.GetCounter().GetValue()
			}
		}
	}
	require.Equal(t, map[string]float64{"success": 1, "failure": 1}, outcomes)
}
