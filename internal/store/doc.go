// Package store persists Hearth's device collection and user list as
// plain JSON files.
//
// devices.json is a nested document keyed by room then device type:
//
//	{
//	  "kitchen": {
//	    "light": {"type": "kasa", "ip": "192.168.1.50", "state": true}
//	  },
//	  "hall": {
//	    "door": {"type": "gpio", "pin": "front_door", "state": false}
//	  }
//	}
//
// users.json is a flat array of recipient records:
//
//	[{"email": "me@gmail.com", "password": "app-password"}]
//
// A missing file reads as empty; a file that exists but cannot be parsed
// returns ErrCorruptStore. Device saves are atomic (temp file + rename)
// and both files are written owner-only because they carry addresses and
// credentials.
package store
