package models

type Role string

const (
	RoleCreator      Role = "creator"
	RoleOrganization Role = "organization"
)
