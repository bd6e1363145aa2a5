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

// BucketQuotas mirrors the Garage admin API's bucket quotas. Both fields
// are optional; an unset field means no limit.
type BucketQuotas struct {
	// MaxObjectCount caps the number of objects the bucket may hold.
	// +kubebuilder:validation:Optional
	MaxObjectCount *uint64 `json:"maxObjectCount,omitempty"`

	// MaxSize, Kubernetes resource-quantity lexical form (e.g. "500Mi"),
	// converted to a fixed-point byte count before being sent to Garage.
	// +kubebuilder:validation:Optional
	MaxSize string `json:"maxSize,omitempty"`
}

// BucketSpec defines the desired state of Bucket
type BucketSpec struct {
	// GarageRef names the Garage CR this bucket is created in.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:XValidation:rule="self == oldSelf",message="garageRef is immutable"
	GarageRef NamespacedRef `json:"garageRef"`

	// Quotas to apply to the bucket.
	// +kubebuilder:validation:Optional
	Quotas BucketQuotas `json:"quotas,omitempty"`
}

// BucketStatus defines the observed state of Bucket
type BucketStatus struct {
	// Id is the remote Garage bucket ID. Immutable once set.
	// +kubebuilder:validation:Optional
	Id string `json:"id,omitempty"`

	// State is the discrete lifecycle phase: Creating, Configuring, Ready
	// or Errored.
	// +kubebuilder:validation:Optional
	State State `json:"state,omitempty"`

	// Status management using Conditions.
	// See also : https://github.com/kubernetes/community/blob/master/contributors/devel/sig-architecture/api-conventions.md#typical-status-properties
	Conditions []metav1.Condition `json:"conditions,omitempty" patchStrategy:"merge" patchMergeKey:"type"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Garage",type=string,JSONPath=`.spec.garageRef`
// +kubebuilder:printcolumn:name="Quotas",type=string,JSONPath=`.spec.quotas`
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.state`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// Bucket is the Schema for the buckets API
type Bucket struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BucketSpec   `json:"spec,omitempty"`
	Status BucketStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// BucketList contains a list of Bucket
type BucketList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Bucket `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Bucket{}, &BucketList{})
}
