package engine_test

import (
	"errors"
	"testing"
	"time"

	"kitlab/backend/engine"
	"kitlab/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressFixture struct {
	eng     *engine.Engine
	lessons []models.Lesson
	course  models.OfficialCourse
	kit     models.Kit
}

func newProgressFixture(t *testing.T, lessonCount int) *progressFixture {
	t.Helper()
	eng, s, _ := newTestEngine(t)

	f := &progressFixture{eng: eng}
	f.kit = models.Kit{Name: "Starter Kit"}
	require.NoError(t, s.CreateKit(&f.kit))
	f.course = models.OfficialCourse{KitID: f.kit.ID, Title: "Basics", IsPublished: true}
	require.NoError(t, s.CreateOfficialCourse(&f.course))
	for i := 0; i < lessonCount; i++ {
		l := models.Lesson{
			CourseID: f.course.ID, CourseType: models.CourseTypeOfficial,
			Title: "Lesson", OrderIndex: i, IsPublished: true,
		}
		require.NoError(t, s.CreateLesson(&l))
		f.lessons = append(f.lessons, l)
	}
	require.NoError(t, s.UpsertPermission(&models.UserPermission{
		UserID: "student", KitID: f.kit.ID, PermissionType: models.PermissionCourseAccess,
	}))
	return f
}

func TestMarkCompleteSetsTimestamp(t *testing.T) {
	f := newProgressFixture(t, 1)
	now := time.Now()

	progress, err := f.eng.Tracker.MarkComplete("student", f.lessons[0].ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressCompleted, progress.Status)
	require.NotNil(t, progress.CompletedAt)
	assert.Equal(t, now.UTC().Unix(), progress.CompletedAt.Unix())
}

func TestRecompletionKeepsFirstTimestamp(t *testing.T) {
	f := newProgressFixture(t, 1)
	first := time.Now()
	later := first.Add(48 * time.Hour)

	progress, err := f.eng.Tracker.MarkComplete("student", f.lessons[0].ID, first)
	require.NoError(t, err)
	require.NotNil(t, progress.CompletedAt)

	again, err := f.eng.Tracker.MarkComplete("student", f.lessons[0].ID, later)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.Equal(t, first.UTC().Unix(), again.CompletedAt.Unix(),
		"first completion time must be preserved")
}

func TestStartDoesNotReopenCompleted(t *testing.T) {
	f := newProgressFixture(t, 1)
	now := time.Now()

	_, err := f.eng.Tracker.MarkComplete("student", f.lessons[0].ID, now)
	require.NoError(t, err)

	progress, err := f.eng.Tracker.Start("student", f.lessons[0].ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.ProgressCompleted, progress.Status)
	require.NotNil(t, progress.CompletedAt)
}

func TestProgressRequiresCurrentEntitlement(t *testing.T) {
	f := newProgressFixture(t, 1)
	now := time.Now()

	t.Run("stranger is denied", func(t *testing.T) {
		_, err := f.eng.Tracker.MarkComplete("stranger", f.lessons[0].ID, now)
		assert.True(t, errors.Is(err, engine.ErrAccessDenied))
		reason, _ := engine.Reason(err)
		assert.Equal(t, engine.ReasonKitNotOwned, reason)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		_, err := f.eng.Tracker.MarkComplete("", f.lessons[0].ID, now)
		assert.True(t, errors.Is(err, engine.ErrNotAuthenticated))
	})
}

func TestProgressChecksEntitlementAtWriteTime(t *testing.T) {
	eng, s, _ := newTestEngine(t)

	kit := models.Kit{Name: "Starter Kit"}
	require.NoError(t, s.CreateKit(&kit))
	course := models.OfficialCourse{KitID: kit.ID, Title: "Basics", IsPublished: true}
	require.NoError(t, s.CreateOfficialCourse(&course))
	lesson := models.Lesson{CourseID: course.ID, CourseType: models.CourseTypeOfficial, Title: "L", IsPublished: true}
	require.NoError(t, s.CreateLesson(&lesson))

	// Entitlement valid at page load, expired by the time of the write.
	pageLoad := time.Now()
	expiry := pageLoad.Add(time.Minute)
	require.NoError(t, s.UpsertPermission(&models.UserPermission{
		UserID: "student", KitID: kit.ID,
		PermissionType: models.PermissionCourseAccess, ExpiresAt: &expiry,
	}))

	writeTime := pageLoad.Add(2 * time.Minute)
	_, err := eng.Tracker.MarkComplete("student", lesson.ID, writeTime)
	assert.True(t, errors.Is(err, engine.ErrAccessDenied))
	reason, _ := engine.Reason(err)
	assert.Equal(t, engine.ReasonEntitlementExpired, reason)
}

func TestCourseCompletion(t *testing.T) {
	f := newProgressFixture(t, 4)
	now := time.Now()

	_, err := f.eng.Tracker.MarkComplete("student", f.lessons[0].ID, now)
	require.NoError(t, err)
	_, err = f.eng.Tracker.MarkComplete("student", f.lessons[1].ID, now)
	require.NoError(t, err)
	_, err = f.eng.Tracker.Start("student", f.lessons[2].ID, now)
	require.NoError(t, err)

	summary, err := f.eng.Tracker.CourseCompletion("student", f.course.ID, models.CourseTypeOfficial)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Completed)
	assert.InDelta(t, 50.0, summary.Percent, 0.01)
	assert.Equal(t, models.ProgressInProgress, summary.Lessons[f.lessons[2].ID])
	// Absent rows count as not_started.
	assert.Equal(t, models.ProgressNotStarted, summary.Lessons[f.lessons[3].ID])
}

func TestCreatorTracksProgressOnOwnCourse(t *testing.T) {
	eng, s, _ := newTestEngine(t)

	kit := models.Kit{Name: "Starter Kit"}
	require.NoError(t, s.CreateKit(&kit))
	course := models.CustomCourse{CreatorID: "creator", KitID: kit.ID, Title: "Mine"}
	require.NoError(t, s.CreateCustomCourse(&course))
	lesson := models.Lesson{CourseID: course.ID, CourseType: models.CourseTypeCustom, Title: "L"}
	require.NoError(t, s.CreateLesson(&lesson))

	// No kit entitlement, but the course is the creator's own.
	_, err := eng.Tracker.MarkComplete("creator", lesson.ID, time.Now())
	assert.NoError(t, err)
}
