/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GaragePorts lists the four named ports a Garage instance listens on.
type GaragePorts struct {
	// +kubebuilder:validation:Required
	Admin uint16 `json:"admin"`

	// +kubebuilder:validation:Required
	Rpc uint16 `json:"rpc"`

	// +kubebuilder:validation:Required
	S3Api uint16 `json:"s3Api"`

	// +kubebuilder:validation:Required
	S3Web uint16 `json:"s3Web"`
}

// GarageConfig is the subset of spec rendered into the Garage TOML config.
type GarageConfig struct {
	// +kubebuilder:validation:Required
	Ports GaragePorts `json:"ports"`

	// +kubebuilder:validation:Required
	Region string `json:"region"`

	// +kubebuilder:validation:Required
	ReplicationMode string `json:"replicationMode"`
}

// GarageSecrets references the admin and rpc bearer secrets. Either may be
// left unset, in which case the reconciler looks for the default-located
// secret ${name}-admin.key / ${name}-rpc.key in the CR's namespace.
type GarageSecrets struct {
	// +kubebuilder:validation:Optional
	Admin *NamespacedRef `json:"admin,omitempty"`

	// +kubebuilder:validation:Optional
	Rpc *NamespacedRef `json:"rpc,omitempty"`
}

// PvcSpec is either a reference to an existing PersistentVolumeClaim by
// name, or an inline size/storageClass pair the reconciler provisions one
// from.
type PvcSpec struct {
	// ExistingClaim names a PersistentVolumeClaim already present in the
	// CR's namespace. Mutually exclusive with Size.
	// +kubebuilder:validation:Optional
	ExistingClaim string `json:"existingClaim,omitempty"`

	// Size, Kubernetes resource-quantity lexical form (e.g. "10Gi").
	// Required when ExistingClaim is unset.
	// +kubebuilder:validation:Optional
	Size string `json:"size,omitempty"`

	// StorageClass to request when provisioning.
	// +kubebuilder:validation:Optional
	StorageClass string `json:"storageClass,omitempty"`
}

// GarageStorage groups the meta claim and the (possibly multiple) data
// claims a Garage instance mounts.
type GarageStorage struct {
	// +kubebuilder:validation:Required
	Meta PvcSpec `json:"meta"`

	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinItems=1
	Data []PvcSpec `json:"data"`
}

// GarageSpec defines the desired state of Garage
type GarageSpec struct {
	// AutoLayout, when true, makes the reconciler submit an initial cluster
	// layout once the Deployment becomes ready. When false, layout is left
	// to an external operator/administrator.
	// +kubebuilder:validation:Optional
	AutoLayout bool `json:"autoLayout,omitempty"`

	// +kubebuilder:validation:Required
	Config GarageConfig `json:"config"`

	// +kubebuilder:validation:Optional
	Secrets GarageSecrets `json:"secrets,omitempty"`

	// +kubebuilder:validation:Required
	Storage GarageStorage `json:"storage"`
}

// GarageStatus defines the observed state of Garage
type GarageStatus struct {
	// State is the discrete lifecycle phase: Creating, LayingOut, Ready or
	// Errored.
	// +kubebuilder:validation:Optional
	State State `json:"state,omitempty"`

	// Capacity is the cluster's aggregate storage capacity in bytes, as
	// last reported by the admin API.
	// +kubebuilder:validation:Optional
	Capacity int64 `json:"capacity,omitempty"`

	// Status management using Conditions.
	// See also : https://github.com/kubernetes/community/blob/master/contributors/devel/sig-architecture/api-conventions.md#typical-status-properties
	Conditions []metav1.Condition `json:"conditions,omitempty" patchStrategy:"merge" patchMergeKey:"type"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Region",type=string,JSONPath=`.spec.config.region`
// +kubebuilder:printcolumn:name="ReplicationMode",type=string,JSONPath=`.spec.config.replicationMode`
// +kubebuilder:printcolumn:name="Capacity",type=integer,JSONPath=`.status.capacity`
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.state`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// Garage is the Schema for the garages API
type Garage struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   GarageSpec   `json:"spec,omitempty"`
	Status GarageStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// GarageList contains a list of Garage
type GarageList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Garage `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Garage{}, &GarageList{})
}
