package engine

import (
	"fmt"

	"kitlab/backend/models"
	"kitlab/backend/store"
)

// courseRef is the access-relevant metadata of a course of either kind.
type courseRef struct {
	kitID     string
	creatorID string // empty for official courses
	published bool
	public    bool // official courses are implicitly public to entitled users
}

func officialRef(c *models.OfficialCourse) courseRef {
	return courseRef{kitID: c.KitID, published: c.IsPublished, public: true}
}

func customRef(c *models.CustomCourse) courseRef {
	return courseRef{
		kitID:     c.KitID,
		creatorID: c.CreatorID,
		published: c.IsPublished,
		public:    c.IsPublic,
	}
}

// catalog resolves a lesson's (course id, course kind) parent key to the
// course metadata access checks need.
type catalog struct {
	official store.OfficialCourseStore
	custom   store.CustomCourseStore
}

func (c *catalog) ref(courseID, courseType string) (courseRef, error) {
	switch courseType {
	case models.CourseTypeOfficial:
		course, err := c.official.GetOfficialCourse(courseID)
		if err != nil {
			return courseRef{}, storeErr(err)
		}
		return officialRef(course), nil
	case models.CourseTypeCustom:
		course, err := c.custom.GetCustomCourse(courseID)
		if err != nil {
			return courseRef{}, storeErr(err)
		}
		return customRef(course), nil
	default:
		return courseRef{}, fmt.Errorf("%w: unknown course type %q", ErrNotFound, courseType)
	}
}
