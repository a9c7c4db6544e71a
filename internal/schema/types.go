// Package schema defines the closed sets ARES reasons over: entity types,
// relation predicates, and the static guard/inverse/single-valued tables
// that constrain how they may combine.
package schema

// EntityType is one of the closed set of entity categories ARES recognizes.
type EntityType string

const (
	Person     EntityType = "PERSON"
	Org        EntityType = "ORG"
	Place      EntityType = "PLACE"
	Date       EntityType = "DATE"
	Time       EntityType = "TIME"
	Work       EntityType = "WORK"
	Item       EntityType = "ITEM"
	Object     EntityType = "OBJECT"
	Misc       EntityType = "MISC"
	Species    EntityType = "SPECIES"
	House      EntityType = "HOUSE"
	Tribe      EntityType = "TRIBE"
	Title      EntityType = "TITLE"
	Event      EntityType = "EVENT"
	Race       EntityType = "RACE"
	Creature   EntityType = "CREATURE"
	Artifact   EntityType = "ARTIFACT"
	Technology EntityType = "TECHNOLOGY"
	Magic      EntityType = "MAGIC"
	Language   EntityType = "LANGUAGE"
	Currency   EntityType = "CURRENCY"
	Material   EntityType = "MATERIAL"
	Drug       EntityType = "DRUG"
	Deity      EntityType = "DEITY"
	Ability    EntityType = "ABILITY"
	Skill      EntityType = "SKILL"
	Power      EntityType = "POWER"
	Technique  EntityType = "TECHNIQUE"
	Spell      EntityType = "SPELL"
)

// AllEntityTypes lists every closed-set entity type, in declaration order.
var AllEntityTypes = []EntityType{
	Person, Org, Place, Date, Time, Work, Item, Object, Misc, Species, House,
	Tribe, Title, Event, Race, Creature, Artifact, Technology, Magic,
	Language, Currency, Material, Drug, Deity, Ability, Skill, Power,
	Technique, Spell,
}

// ValidEntityType reports whether t is a member of the closed entity-type set.
func ValidEntityType(t EntityType) bool {
	for _, v := range AllEntityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ProperNounTypes are entity types whose canonical form must begin with a
// capital letter (or a recognized title prefix) per spec C6.
var ProperNounTypes = map[EntityType]bool{
	Person: true, Org: true, Place: true, House: true, Tribe: true,
}

// Tier is the recall/precision band assigned to an entity by C6.
type Tier string

const (
	TierA Tier = "A" // graph-worthy
	TierB Tier = "B" // supporting
	TierC Tier = "C" // candidate
)

// TierRank gives tiers a total order, A highest.
func TierRank(t Tier) int {
	switch t {
	case TierA:
		return 3
	case TierB:
		return 2
	case TierC:
		return 1
	default:
		return 0
	}
}

// Predicate is one of the closed set of relation predicates ARES emits.
type Predicate string

const (
	MarriedTo   Predicate = "married_to"
	ParentOf    Predicate = "parent_of"
	ChildOf     Predicate = "child_of"
	SiblingOf   Predicate = "sibling_of"
	FriendsWith Predicate = "friends_with"
	EnemyOf     Predicate = "enemy_of"
	AllyOf      Predicate = "ally_of"
	SpokeTo     Predicate = "spoke_to"
	Met         Predicate = "met"
	AliasOf     Predicate = "alias_of"
	LivesIn     Predicate = "lives_in"
	BornIn      Predicate = "born_in"
	DiesIn      Predicate = "dies_in"
	TravelledTo Predicate = "traveled_to"
	Rules       Predicate = "rules"
	RuledBy     Predicate = "ruled_by"
	Founded     Predicate = "founded"
	FoundedBy   Predicate = "founded_by"
	TeachesAt   Predicate = "teaches_at"
	Taught      Predicate = "taught"
	TaughtBy    Predicate = "taught_by"
	Fought      Predicate = "fought"
	Built       Predicate = "built"
	BuiltBy     Predicate = "built_by"
	Authored    Predicate = "authored"
	AuthoredBy  Predicate = "authored_by"
	MemberOf    Predicate = "member_of"
	HasMember   Predicate = "has_member"
	Owns        Predicate = "owns"
	OwnedBy     Predicate = "owned_by"
)

// GuardRule constrains the subject/object types a predicate may connect.
type GuardRule struct {
	Subj []EntityType
	Obj  []EntityType
}

func allPeople() []EntityType { return []EntityType{Person} }
func places() []EntityType {
	return []EntityType{Place, House, Tribe, Org}
}
func orgLike() []EntityType { return []EntityType{Org, House, Tribe} }

// GUARD maps each predicate to the allowed subject/object type sets.
var GUARD = map[Predicate]GuardRule{
	MarriedTo:   {Subj: allPeople(), Obj: allPeople()},
	ParentOf:    {Subj: allPeople(), Obj: allPeople()},
	ChildOf:     {Subj: allPeople(), Obj: allPeople()},
	SiblingOf:   {Subj: allPeople(), Obj: allPeople()},
	FriendsWith: {Subj: allPeople(), Obj: allPeople()},
	EnemyOf:     {Subj: allPeople(), Obj: allPeople()},
	AllyOf:      {Subj: append(allPeople(), orgLike()...), Obj: append(allPeople(), orgLike()...)},
	SpokeTo:     {Subj: allPeople(), Obj: allPeople()},
	Met:         {Subj: allPeople(), Obj: allPeople()},
	AliasOf:     {Subj: []EntityType{Person, Org, Place}, Obj: []EntityType{Person, Org, Place}},
	LivesIn:     {Subj: allPeople(), Obj: places()},
	BornIn:      {Subj: allPeople(), Obj: places()},
	DiesIn:      {Subj: allPeople(), Obj: places()},
	TravelledTo: {Subj: allPeople(), Obj: places()},
	Rules:       {Subj: allPeople(), Obj: places()},
	RuledBy:     {Subj: places(), Obj: allPeople()},
	Founded:     {Subj: allPeople(), Obj: orgLike()},
	FoundedBy:   {Subj: orgLike(), Obj: allPeople()},
	TeachesAt:   {Subj: allPeople(), Obj: append(orgLike(), Place)},
	Taught:      {Subj: allPeople(), Obj: allPeople()},
	TaughtBy:    {Subj: allPeople(), Obj: allPeople()},
	Fought:      {Subj: allPeople(), Obj: allPeople()},
	Built:       {Subj: allPeople(), Obj: []EntityType{Artifact, Work, Item, Place}},
	BuiltBy:     {Subj: []EntityType{Artifact, Work, Item, Place}, Obj: allPeople()},
	Authored:    {Subj: allPeople(), Obj: []EntityType{Work}},
	AuthoredBy:  {Subj: []EntityType{Work}, Obj: allPeople()},
	MemberOf:    {Subj: allPeople(), Obj: orgLike()},
	HasMember:   {Subj: orgLike(), Obj: allPeople()},
	Owns:        {Subj: allPeople(), Obj: []EntityType{Item, Object, Artifact}},
	OwnedBy:     {Subj: []EntityType{Item, Object, Artifact}, Obj: allPeople()},
}

// INVERSE maps a predicate to its mirror. Symmetric predicates map to themselves.
var INVERSE = map[Predicate]Predicate{
	MarriedTo:   MarriedTo,
	SiblingOf:   SiblingOf,
	SpokeTo:     SpokeTo,
	Met:         Met,
	AllyOf:      AllyOf,
	EnemyOf:     EnemyOf,
	FriendsWith: FriendsWith,
	AliasOf:     AliasOf,
	ParentOf:    ChildOf,
	ChildOf:     ParentOf,
	Rules:       RuledBy,
	RuledBy:     Rules,
	Founded:     FoundedBy,
	FoundedBy:   Founded,
	Taught:      TaughtBy,
	TaughtBy:    Taught,
	Built:       BuiltBy,
	BuiltBy:     Built,
	Authored:    AuthoredBy,
	AuthoredBy:  Authored,
	MemberOf:    HasMember,
	HasMember:   MemberOf,
	Owns:        OwnedBy,
	OwnedBy:     Owns,
}

// SingleValued lists predicates for which a given subject can have at most
// one object.
var SingleValued = map[Predicate]bool{
	ParentOf: false, // a person can have several children
	ChildOf:  false, // a person can have several parents... but at most the biological two; left recall-permissive
	MarriedTo: true,
	BornIn:    true,
	DiesIn:    true,
}

// PassesGuard reports whether pred may connect a subject of subjType to an
// object of objType.
func PassesGuard(pred Predicate, subjType, objType EntityType) bool {
	rule, ok := GUARD[pred]
	if !ok {
		return false
	}
	return containsType(rule.Subj, subjType) && containsType(rule.Obj, objType)
}

func containsType(set []EntityType, t EntityType) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}

// Symmetric reports whether pred is its own inverse.
func Symmetric(pred Predicate) bool {
	inv, ok := INVERSE[pred]
	return ok && inv == pred
}
