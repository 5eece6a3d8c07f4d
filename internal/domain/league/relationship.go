package league

import "time"

type RelationshipKind string

const (
	RelationshipTeamPlayer      RelationshipKind = "team_player"
	RelationshipTeamCompetition RelationshipKind = "team_competition"
)

func (k RelationshipKind) Valid() bool {
	return k == RelationshipTeamPlayer || k == RelationshipTeamCompetition
}

// OwnerKinds returns the entity kinds behind ownerA and ownerB.
func (k RelationshipKind) OwnerKinds() (EntityKind, EntityKind) {
	switch k {
	case RelationshipTeamPlayer:
		return KindTeam, KindPlayer
	case RelationshipTeamCompetition:
		return KindTeam, KindCompetition
	default:
		return "", ""
	}
}

type RelationshipState string

const (
	StatePending   RelationshipState = "pending"
	StateAccepted  RelationshipState = "accepted"
	StateRejected  RelationshipState = "rejected"
	StateCancelled RelationshipState = "cancelled"
	StateEnded     RelationshipState = "ended"
)

// IsOpen reports whether the state counts against the one-open-relationship-per-pair rule.
func (s RelationshipState) IsOpen() bool {
	return s == StatePending || s == StateAccepted
}

type Origin string

const (
	OriginOwnerA Origin = "ownerA"
	OriginOwnerB Origin = "ownerB"
)

func (o Origin) Valid() bool {
	return o == OriginOwnerA || o == OriginOwnerB
}

func (o Origin) Opposite() Origin {
	if o == OriginOwnerA {
		return OriginOwnerB
	}
	return OriginOwnerA
}

type Relationship struct {
	ID              string            `gorm:"type:uuid;primaryKey" bson:"_id"`
	Kind            RelationshipKind  `gorm:"type:varchar(32);not null;index:idx_relationships_pair" bson:"kind"`
	OwnerAID        string            `gorm:"type:uuid;not null;index:idx_relationships_pair" bson:"owner_a_id"`
	OwnerBID        string            `gorm:"type:uuid;not null;index:idx_relationships_pair" bson:"owner_b_id"`
	RequestedBy     string            `gorm:"not null" bson:"requested_by"`
	Origin          Origin            `gorm:"type:varchar(8);not null" bson:"origin"`
	State           RelationshipState `gorm:"type:varchar(16);not null;index" bson:"state"`
	Active          bool              `gorm:"not null;default:false" bson:"active"`
	Role            *string           `bson:"role,omitempty"`
	ShirtNumber     *int              `bson:"shirt_number,omitempty"`
	Notes           *string           `bson:"notes,omitempty"`
	ValidFrom       time.Time         `gorm:"not null" bson:"valid_from"`
	ValidTo         *time.Time        `bson:"valid_to,omitempty"`
	AcceptedAt      *time.Time        `bson:"accepted_at,omitempty"`
	EndedAt         *time.Time        `bson:"ended_at,omitempty"`
	RejectionReason *string           `bson:"rejection_reason,omitempty"`
	OpenPairKey     *string           `gorm:"uniqueIndex" bson:"open_pair_key,omitempty"`
	Ownership       `gorm:"embedded" bson:",inline"`
	CreatedAt       time.Time `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" bson:"updated_at"`
}

// PairKey identifies an owner pair of a given kind.
func PairKey(kind RelationshipKind, ownerAID, ownerBID string) string {
	return string(kind) + ":" + ownerAID + ":" + ownerBID
}

func (r *Relationship) PairKey() string {
	return PairKey(r.Kind, r.OwnerAID, r.OwnerBID)
}

// SyncOpenPairKey keeps OpenPairKey set exactly while the state is open.
func (r *Relationship) SyncOpenPairKey() {
	if r.State.IsOpen() {
		key := r.PairKey()
		r.OpenPairKey = &key
		return
	}
	r.OpenPairKey = nil
}

// OwnerID returns the owner on the given side.
func (r *Relationship) OwnerID(side Origin) string {
	if side == OriginOwnerA {
		return r.OwnerAID
	}
	return r.OwnerBID
}

// OwnerKind returns the entity kind on the given side.
func (r *Relationship) OwnerKind(side Origin) EntityKind {
	a, b := r.Kind.OwnerKinds()
	if side == OriginOwnerA {
		return a
	}
	return b
}

// ContractChanges are the non-identity fields of a relationship that may be amended.
type ContractChanges struct {
	Role        *string    `json:"role,omitempty"`
	ShirtNumber *int       `json:"shirtNumber,omitempty" validate:"omitempty,min=0,max=999"`
	Notes       *string    `json:"notes,omitempty"`
	ValidFrom   *time.Time `json:"validFrom,omitempty"`
	ValidTo     *time.Time `json:"validTo,omitempty"`
}

func (c ContractChanges) Empty() bool {
	return c.Role == nil && c.ShirtNumber == nil && c.Notes == nil && c.ValidFrom == nil && c.ValidTo == nil
}

// ApplyTo copies the present fields onto rel and checks the validity window.
func (c ContractChanges) ApplyTo(rel *Relationship) error {
	if c.Role != nil {
		rel.Role = c.Role
	}
	if c.ShirtNumber != nil {
		rel.ShirtNumber = c.ShirtNumber
	}
	if c.Notes != nil {
		rel.Notes = c.Notes
	}
	if c.ValidFrom != nil {
		rel.ValidFrom = *c.ValidFrom
	}
	if c.ValidTo != nil {
		rel.ValidTo = c.ValidTo
	}
	if rel.ValidTo != nil && rel.ValidTo.Before(rel.ValidFrom) {
		return ErrInvalidValidityWindow
	}
	return nil
}

type RelationshipAction string

const (
	ActionRequested RelationshipAction = "requested"
	ActionApproved  RelationshipAction = "approved"
	ActionRejected  RelationshipAction = "rejected"
	ActionCancelled RelationshipAction = "cancelled"
	ActionAmended   RelationshipAction = "amended"
	ActionEnded     RelationshipAction = "ended"
	ActionCreated   RelationshipAction = "created"
)

// RelationshipEvent is an append-only audit entry. It outlives deleted relationships.
type RelationshipEvent struct {
	ID             string             `gorm:"type:uuid;primaryKey" bson:"_id"`
	RelationshipID string             `gorm:"type:uuid;not null;index" bson:"relationship_id"`
	Kind           RelationshipKind   `gorm:"type:varchar(32);not null" bson:"kind"`
	OwnerAID       string             `gorm:"type:uuid;not null" bson:"owner_a_id"`
	OwnerBID       string             `gorm:"type:uuid;not null" bson:"owner_b_id"`
	Action         RelationshipAction `gorm:"type:varchar(16);not null" bson:"action"`
	ActorID        string             `gorm:"not null" bson:"actor_id"`
	Reason         *string            `bson:"reason,omitempty"`
	At             time.Time          `gorm:"not null" bson:"at"`
}

// PairQuery is the existence check used for duplicate prevention.
type PairQuery struct {
	Kind      RelationshipKind
	OwnerAID  string
	OwnerBID  string
	States    []RelationshipState
	ExcludeID string
}

type RelationshipFilter struct {
	Kind     RelationshipKind
	OwnerAID string
	OwnerBID string
	State    RelationshipState
	Limit    int
	Offset   int
}
