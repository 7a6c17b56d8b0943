package api

import "wedding-site/internal/graphql"

var (
	invitationLinkOp = graphql.MustParse(`
query InvitationLink($input: SimpleInput!) {
  invitationLink(input: $input) {
    _id
    code
    guestSize
    guestPerEntry
    guestsRegistered
    type
    status
    inviteUrl
  }
}`)

	guestOp = graphql.MustParse(`
query Guest($input: FetchGuestInput!) {
  guest(input: $input) {
    title
    firstName
    lastName
    link {
      invitationCardUrl
      guestUrl
    }
  }
}`)

	galleryFilesOp = graphql.MustParse(`
query GalleryFiles($input: FetchGalleryInput!, $limit: Int!, $page: Int!) {
  galleryFiles(input: $input, limit: $limit, page: $page) {
    items {
      _id
      url
      isGeneral
      isConfirmed
    }
    limit
    page
  }
}`)

	rsvpOp = graphql.MustParse(`
mutation Rsvp($input: CreateGuestInput!) {
  rsvp(input: $input) {
    _id
    phone
    firstName
    lastName
    email
    link {
      invitationCardUrl
      guestUrl
    }
  }
}`)
)
