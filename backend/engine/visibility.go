package engine

import (
	"time"

	"kitlab/backend/models"
	"kitlab/backend/store"
)

// Viewer is the caller identity the filter judges against. The zero value is
// an anonymous caller. Admin is a capability of the viewer: it bypasses the
// authentication, publish and entitlement rules without a separate code path.
type Viewer struct {
	UserID string
	Admin  bool
}

// Anonymous reports whether the viewer carries no identity.
func (v Viewer) Anonymous() bool {
	return v.UserID == ""
}

func (v Viewer) owns(ref courseRef) bool {
	return ref.creatorID != "" && ref.creatorID == v.UserID
}

// Filter decides which catalog content a viewer may see. Denials come back
// as the engine sentinels; nil means visible.
type Filter struct {
	resolver *Resolver
	catalog  *catalog
}

func NewFilter(resolver *Resolver, official store.OfficialCourseStore, custom store.CustomCourseStore) *Filter {
	return &Filter{
		resolver: resolver,
		catalog:  &catalog{official: official, custom: custom},
	}
}

// courseAccess applies the visibility rules in order, first match wins:
// creator override, anonymous gate, unpublished-is-invisible, kit
// entitlement. Unpublished content must be indistinguishable from
// nonexistent to ordinary callers, so that rule yields ErrNotFound.
func (f *Filter) courseAccess(v Viewer, ref courseRef, asOf time.Time) error {
	if v.owns(ref) || v.Admin {
		return nil
	}
	if v.Anonymous() {
		return ErrNotAuthenticated
	}
	if !ref.published {
		return ErrNotFound
	}
	if ref.creatorID != "" && !ref.public {
		return deny(ReasonCourseNotPublic)
	}
	verdict, err := f.resolver.Resolve(v.UserID, ref.kitID, models.PermissionCourseAccess, asOf)
	if err != nil {
		return err
	}
	if !verdict.Granted {
		if verdict.ExpiresAt != nil {
			return deny(ReasonEntitlementExpired)
		}
		return deny(ReasonKitNotOwned)
	}
	return nil
}

// OfficialCourse reports whether the viewer may open an official course.
func (f *Filter) OfficialCourse(v Viewer, c *models.OfficialCourse, asOf time.Time) error {
	return f.courseAccess(v, officialRef(c), asOf)
}

// CustomCourse reports whether the viewer may open a custom course. The
// creator sees their own course regardless of the publish and public flags.
func (f *Filter) CustomCourse(v Viewer, c *models.CustomCourse, asOf time.Time) error {
	return f.courseAccess(v, customRef(c), asOf)
}

// Lesson gates a lesson behind its parent course's visibility, then hides
// unpublished lessons from everyone but the course creator and admins.
func (f *Filter) Lesson(v Viewer, l *models.Lesson, asOf time.Time) error {
	ref, err := f.catalog.ref(l.CourseID, l.CourseType)
	if err != nil {
		return err
	}
	if err := f.courseAccess(v, ref, asOf); err != nil {
		return err
	}
	if !l.IsPublished && !v.Admin && !v.owns(ref) {
		return ErrNotFound
	}
	return nil
}

// VisibleOfficialCourses filters a course list down to what the viewer may
// open. It uses one batched entitlement lookup instead of one per course;
// the result equals applying OfficialCourse to each item.
func (f *Filter) VisibleOfficialCourses(v Viewer, courses []models.OfficialCourse, asOf time.Time) ([]models.OfficialCourse, error) {
	if v.Admin {
		return courses, nil
	}
	if v.Anonymous() {
		return nil, nil
	}
	kits, err := f.resolver.ResolveKits(v.UserID, models.PermissionCourseAccess, asOf)
	if err != nil {
		return nil, err
	}
	var visible []models.OfficialCourse
	for _, c := range courses {
		if c.IsPublished && kits.Has(c.KitID) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// VisibleCustomCourses filters a custom course list for the viewer. The
// viewer's own courses survive regardless of flags.
func (f *Filter) VisibleCustomCourses(v Viewer, courses []models.CustomCourse, asOf time.Time) ([]models.CustomCourse, error) {
	if v.Admin {
		return courses, nil
	}
	var kits KitSet
	if !v.Anonymous() {
		var err error
		kits, err = f.resolver.ResolveKits(v.UserID, models.PermissionCourseAccess, asOf)
		if err != nil {
			return nil, err
		}
	}
	var visible []models.CustomCourse
	for _, c := range courses {
		if !v.Anonymous() && c.CreatorID == v.UserID {
			visible = append(visible, c)
			continue
		}
		if v.Anonymous() {
			continue
		}
		if c.IsPublished && c.IsPublic && kits.Has(c.KitID) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// VisibleLessons returns the lessons of one course the viewer may see. The
// course-level verdict is taken once; the per-lesson publish flag is then
// applied, with drafts visible to the creator and admins.
func (f *Filter) VisibleLessons(v Viewer, courseID, courseType string, lessons []models.Lesson, asOf time.Time) ([]models.Lesson, error) {
	ref, err := f.catalog.ref(courseID, courseType)
	if err != nil {
		return nil, err
	}
	if err := f.courseAccess(v, ref, asOf); err != nil {
		return nil, err
	}
	if v.Admin || v.owns(ref) {
		return lessons, nil
	}
	var visible []models.Lesson
	for _, l := range lessons {
		if l.IsPublished {
			visible = append(visible, l)
		}
	}
	return visible, nil
}
