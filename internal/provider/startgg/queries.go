package startgg

// The four query shapes the pipeline consumes. Kept as raw documents so the
// variables stay visible next to the code that binds them.

const discoverTournamentsQuery = `
query DiscoverTournaments($page: Int, $perPage: Int, $coordinates: String!, $radius: String!, $after: Timestamp, $before: Timestamp) {
  tournaments(
    query: {
      page: $page
      perPage: $perPage
      filter: { location: { distanceFrom: $coordinates, distance: $radius }, afterDate: $after, beforeDate: $before }
      sortBy: "startAt"
    }
  ) {
    nodes {
      id
      name
      city
      slug
      startAt
      events {
        slug
        numEntrants
        videogame { name }
      }
    }
  }
}
`

const eventIDQuery = `
query GetEventId($slug: String) {
  event(slug: $slug) { id name }
}
`

const setsPageQuery = `
query EventSets($eventId: ID!, $page: Int!, $perPage: Int!) {
  event(id: $eventId) {
    sets(page: $page, perPage: $perPage, sortType: STANDARD) {
      pageInfo { totalPages }
      nodes { id }
    }
  }
}
`

const setDetailQuery = `
query SetDetail($setId: ID!) {
  set(id: $setId) {
    slots {
      entrant {
        participants { player { gamerTag prefix } }
      }
      standing { stats { score { value } } }
    }
  }
}
`
