package audiences

import "strings"

// diffMembers partitions the local list against the remote membership. The
// local list is the source of truth: remote members missing locally land in
// remove, local subscribers missing remotely in add, and shared emails with
// a different name in update. Email comparison is case-insensitive.
func diffMembers(local []Subscriber, remote []Member) (add, update []Member, remove []string) {
	remoteByEmail := make(map[string]Member, len(remote))
	for _, m := range remote {
		remoteByEmail[strings.ToLower(m.Email)] = m
	}

	localSeen := make(map[string]struct{}, len(local))
	for _, sub := range local {
		key := strings.ToLower(sub.Email)
		localSeen[key] = struct{}{}

		existing, ok := remoteByEmail[key]
		if !ok {
			add = append(add, Member{Email: sub.Email, Name: sub.Name})
			continue
		}
		if existing.Name != sub.Name {
			update = append(update, Member{Email: sub.Email, Name: sub.Name})
		}
	}

	for _, m := range remote {
		if _, ok := localSeen[strings.ToLower(m.Email)]; !ok {
			remove = append(remove, m.Email)
		}
	}
	return add, update, remove
}
