package com

import "github.com/rs/xid"

// Uid is a session-unique identifier of a single transport connection.
// Not to confuse with participant ids which live in the signaling protocol.
type Uid struct {
	xid.ID
}

var NilUid = Uid{xid.NilID()}

func NewUid() Uid { return Uid{xid.New()} }

func (u Uid) IsEmpty() bool { return u.IsNil() }
func (u Uid) Short() string { return u.String()[:3] + "." + u.String()[len(u.String())-3:] }
