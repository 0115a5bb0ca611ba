package roster

import (
	"errors"
	"fmt"

	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrAmbiguousStudent = errors.New("student name is ambiguous")
	ErrAmbiguousParent  = errors.New("parent name is ambiguous")
)

// Registry holds the students, families and classes of one run. It is built
// explicitly and passed around; nothing about it is process-wide.
type Registry struct {
	students     map[int]*models.Student
	studentOrder []*models.Student
	parents      map[string]*models.Parent
	parentOrder  []*models.Parent
	classes      map[string]*models.Class
	classOrder   []*models.Class
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		students: make(map[int]*models.Student),
		parents:  make(map[string]*models.Parent),
		classes:  make(map[string]*models.Class),
	}
}

// AddStudent stores s unless a student with the same ID exists, in which case
// the stored one is returned.
func (r *Registry) AddStudent(s *models.Student) *models.Student {
	if existing, ok := r.students[s.ID]; ok {
		return existing
	}
	r.students[s.ID] = s
	r.studentOrder = append(r.studentOrder, s)
	return s
}

// AddParent stores p unless a family with the same parent names exists.
func (r *Registry) AddParent(p *models.Parent) *models.Parent {
	if existing, ok := r.parents[p.Key()]; ok {
		return existing
	}
	r.parents[p.Key()] = p
	r.parentOrder = append(r.parentOrder, p)
	return p
}

// AddClass returns the class called name, creating it on first use.
func (r *Registry) AddClass(name string) *models.Class {
	if c, ok := r.classes[name]; ok {
		return c
	}
	c := &models.Class{Name: name}
	r.classes[name] = c
	r.classOrder = append(r.classOrder, c)
	return c
}

// Students returns all students in registration order.
func (r *Registry) Students() []*models.Student { return r.studentOrder }

// Parents returns all families in registration order.
func (r *Registry) Parents() []*models.Parent { return r.parentOrder }

// Classes returns all classes in first-seen order.
func (r *Registry) Classes() []*models.Class { return r.classOrder }

// Student looks a student up by ID.
func (r *Registry) Student(id int) (*models.Student, bool) {
	s, ok := r.students[id]
	return s, ok
}

// Class looks a class up by name.
func (r *Registry) Class(name string) (*models.Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Find resolves a student by name. The class roster of className is searched
// first; otherwise the name must be unique across the registry.
func (r *Registry) Find(name, className string) (*models.Student, error) {
	name = models.NormalizeName(name)
	if cls, ok := r.classes[className]; ok {
		for _, s := range cls.Students {
			if s.Name == name {
				return s, nil
			}
		}
	}
	var found *models.Student
	for _, s := range r.studentOrder {
		if s.Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %q, add the class name to distinguish", ErrAmbiguousStudent, name)
		}
		found = s
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrStudentNotFound, name)
	}
	return found, nil
}

// FindParent returns the family where name is the mom or dad, nil when none.
func (r *Registry) FindParent(name string) (*models.Parent, error) {
	var found *models.Parent
	for _, p := range r.parentOrder {
		if p.Mom != name && p.Dad != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %q", ErrAmbiguousParent, name)
		}
		found = p
	}
	return found, nil
}
