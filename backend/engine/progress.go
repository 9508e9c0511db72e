package engine

import (
	"errors"
	"time"

	"kitlab/backend/models"
	"kitlab/backend/store"
)

// Tracker maintains per-(user, lesson) completion state. Writes re-check the
// course_access entitlement at write time, since an entitlement can expire
// between page load and the write.
type Tracker struct {
	progress store.ProgressStore
	lessons  store.LessonStore
	resolver *Resolver
	catalog  *catalog
}

func NewTracker(progress store.ProgressStore, lessons store.LessonStore, resolver *Resolver, official store.OfficialCourseStore, custom store.CustomCourseStore) *Tracker {
	return &Tracker{
		progress: progress,
		lessons:  lessons,
		resolver: resolver,
		catalog:  &catalog{official: official, custom: custom},
	}
}

// requireEntitled loads the lesson and verifies the user currently holds
// course_access on its kit. The lesson's creator is entitled to their own
// course without a kit grant.
func (t *Tracker) requireEntitled(userID, lessonID string, now time.Time) (*models.Lesson, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	lesson, err := t.lessons.GetLesson(lessonID)
	if err != nil {
		return nil, storeErr(err)
	}
	ref, err := t.catalog.ref(lesson.CourseID, lesson.CourseType)
	if err != nil {
		return nil, err
	}
	if ref.creatorID == userID {
		return lesson, nil
	}
	verdict, err := t.resolver.Resolve(userID, ref.kitID, models.PermissionCourseAccess, now)
	if err != nil {
		return nil, err
	}
	if !verdict.Granted {
		if verdict.ExpiresAt != nil {
			return nil, deny(ReasonEntitlementExpired)
		}
		return nil, deny(ReasonKitNotOwned)
	}
	return lesson, nil
}

// Start moves a lesson into in_progress. Starting a completed lesson is a
// no-op: there is no transition out of completed.
func (t *Tracker) Start(userID, lessonID string, now time.Time) (*models.LessonProgress, error) {
	lesson, err := t.requireEntitled(userID, lessonID, now)
	if err != nil {
		return nil, err
	}
	existing, err := t.progress.GetProgress(userID, lessonID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr(err)
	}
	if existing != nil && existing.Status == models.ProgressCompleted {
		return existing, nil
	}
	row := progressRow(existing, userID, lesson)
	row.Status = models.ProgressInProgress
	if err := t.progress.UpsertProgress(row); err != nil {
		return nil, storeErr(err)
	}
	return row, nil
}

// MarkComplete transitions a lesson into completed, stamping the completion
// time. Re-completing is a no-op that keeps the original timestamp: a naive
// upsert would overwrite it, so the existing row is consulted first.
func (t *Tracker) MarkComplete(userID, lessonID string, now time.Time) (*models.LessonProgress, error) {
	lesson, err := t.requireEntitled(userID, lessonID, now)
	if err != nil {
		return nil, err
	}
	existing, err := t.progress.GetProgress(userID, lessonID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr(err)
	}
	if existing != nil && existing.Status == models.ProgressCompleted {
		return existing, nil
	}
	row := progressRow(existing, userID, lesson)
	row.Status = models.ProgressCompleted
	completed := now.UTC()
	row.CompletedAt = &completed
	if err := t.progress.UpsertProgress(row); err != nil {
		return nil, storeErr(err)
	}
	return row, nil
}

func progressRow(existing *models.LessonProgress, userID string, lesson *models.Lesson) *models.LessonProgress {
	if existing != nil {
		return existing
	}
	return &models.LessonProgress{
		UserID:     userID,
		LessonID:   lesson.ID,
		CourseID:   lesson.CourseID,
		CourseType: lesson.CourseType,
	}
}

// CourseCompletion summarizes a user's progress over one course's published
// lessons. Lessons without a progress row count as not_started.
type CourseCompletion struct {
	Total     int               `json:"total"`
	Completed int               `json:"completed"`
	Percent   float64           `json:"percent"`
	Lessons   map[string]string `json:"lessons"` // lesson id -> status
}

func (t *Tracker) CourseCompletion(userID, courseID, courseType string) (CourseCompletion, error) {
	lessons, err := t.lessons.ListLessons(courseID, courseType, true)
	if err != nil {
		return CourseCompletion{}, storeErr(err)
	}
	rows, err := t.progress.ListCourseProgress(userID, courseID, courseType)
	if err != nil {
		return CourseCompletion{}, storeErr(err)
	}
	byLesson := make(map[string]string, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r.Status
	}
	summary := CourseCompletion{
		Total:   len(lessons),
		Lessons: make(map[string]string, len(lessons)),
	}
	for _, l := range lessons {
		status, ok := byLesson[l.ID]
		if !ok {
			status = models.ProgressNotStarted
		}
		summary.Lessons[l.ID] = status
		if status == models.ProgressCompleted {
			summary.Completed++
		}
	}
	if summary.Total > 0 {
		summary.Percent = float64(summary.Completed) / float64(summary.Total) * 100
	}
	return summary, nil
}
